package e2e

import (
	"chat-rooms/client"
	"chat-rooms/domain/event"
	"context"
	"fmt"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config       Config
	API          *client.API
	eventTimeout time.Duration
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR not set")
	}
	s.eventTimeout, err = time.ParseDuration(s.Config.EventTimeout)
	s.Require().NoError(err)
	s.API = client.NewAPI(s.Config.ServerAddr, nil)
}

// Step prints a colorized header for a scenario step
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Subscribe opens a stream and forwards its envelopes until the test ends.
func (s *BaseSuite) Subscribe(userID int64, token string) <-chan event.Envelope {
	ctx, cancel := context.WithCancel(context.Background())
	s.T().Cleanup(cancel)
	stream, err := s.API.OpenStream(ctx, userID, token)
	s.Require().NoError(err)

	events := make(chan event.Envelope, 64)
	go func() {
		defer close(events)
		defer stream.Close()
		for {
			envelope, err := stream.Next()
			if err != nil {
				return
			}
			events <- envelope
		}
	}()
	return events
}

func (s *BaseSuite) Next(events <-chan event.Envelope) event.Envelope {
	select {
	case envelope, ok := <-events:
		s.Require().True(ok, "stream ended")
		return envelope
	case <-time.After(s.eventTimeout):
		s.FailNow("no event received")
		return nil
	}
}
