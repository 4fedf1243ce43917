package chathub_test

import (
	"github.com/stretchr/testify/mock"

	"chatrelay/backend/internal/models"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) AppendMessage(msg *models.ChatMessage) (bool, error) {
	args := m.Called(msg)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) MessagesSince(room string, lastID uint) ([]models.ChatMessage, error) {
	args := m.Called(room, lastID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

// MockClient is a test double for the chathub.Client interface. Events the
// hub sends land in RecvChannel, buffered so tests never block the hub loop.
type MockClient struct {
	sessionID  string
	room       string
	nickname   string
	lastOffset uint
	recovered  bool

	RecvChannel chan models.ServerEvent
}

func newMockClient(id string) *MockClient {
	return &MockClient{
		sessionID:   id,
		nickname:    models.DefaultNickname,
		RecvChannel: make(chan models.ServerEvent, 32),
	}
}

func newMockClientWithOffset(id string, offset uint) *MockClient {
	c := newMockClient(id)
	c.lastOffset = offset
	return c
}

func (c *MockClient) GetSessionID() string                      { return c.sessionID }
func (c *MockClient) GetRoom() string                           { return c.room }
func (c *MockClient) SetRoom(name string)                       { c.room = name }
func (c *MockClient) GetNickname() string                       { return c.nickname }
func (c *MockClient) SetNickname(n string)                      { c.nickname = n }
func (c *MockClient) GetLastOffset() uint                       { return c.lastOffset }
func (c *MockClient) IsRecovered() bool                         { return c.recovered }
func (c *MockClient) MarkRecovered()                            { c.recovered = true }
func (c *MockClient) GetSendChannel() chan<- models.ServerEvent { return c.RecvChannel }
func (c *MockClient) Run()                                      {}
func (c *MockClient) Close()                                    {}

// Drain empties the receive channel and returns everything that arrived.
func (c *MockClient) Drain() []models.ServerEvent {
	var evs []models.ServerEvent
	for {
		select {
		case ev := <-c.RecvChannel:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}
