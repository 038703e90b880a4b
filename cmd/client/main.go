package main

import (
	"bufio"
	"chat-rooms/client"
	"chat-rooms/domain/event"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress    string        `env:"CHAT_SERVER_ADDR,default=localhost:8080"`
	Username         string        `env:"CHAT_USERNAME,required=true"`
	Password         string        `env:"CHAT_PASSWORD,required=true"`
	Register         bool          `env:"CHAT_REGISTER,default=false"`
	RetryMaxAttempts int           `env:"RETRY_MAX_ATTEMPTS,default=3"`
	RetryBaseDelay   time.Duration `env:"RETRY_BASE_DELAY,default=250ms"`
	RetryMaxDelay    time.Duration `env:"RETRY_MAX_DELAY,default=5s"`
	RetryJitter      time.Duration `env:"RETRY_JITTER,default=100ms"`
	LogLevel         string        `env:"LOG_LEVEL,default=WARN"`
}

func (c Config) RetryPolicy() client.RetryPolicy {
	policy := client.DefaultRetryPolicy()
	policy.MaxAttempts = c.RetryMaxAttempts
	policy.BaseDelay = c.RetryBaseDelay
	policy.MaxDelay = c.RetryMaxDelay
	policy.Jitter = c.RetryJitter
	return policy
}

var (
	roomStyle    = color.New(color.FgGreen, color.OpBold)
	messageStyle = color.New(color.FgCyan)
	errorStyle   = color.New(color.FgRed)
	helpStyle    = color.New(color.FgGray)
)

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Load configuration from the environment, .env included.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the session, the stream is kept alive by the account.
	account := client.NewAccount(log, client.NewAPI(config.ServerAddress, nil), config.RetryPolicy(), printEvent)
	defer account.Close()

	authenticate := account.Login
	if config.Register {
		authenticate = account.Register
	}
	session, err := authenticate(ctx, config.Username, config.Password)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not authenticate on %s: %w", config.ServerAddress, err)
	}
	roomStyle.Printf(">>> Connected to %s as %s (user %d), type /help\n", config.ServerAddress, config.Username, session.UserID)

	// 4. Command loop until EOF or Ctrl+C.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	repl := &repl{account: account}
	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			quit, err := repl.exec(ctx, line)
			if err != nil {
				errorStyle.Printf("!! %v\n", err)
			}
			if quit {
				return exitOK, nil
			}
			if _, ok := account.Session(); !ok {
				return exitRuntime, errors.New("session lost")
			}
		}
	}
}

type repl struct {
	account *client.Account
	room    int64
}

func (r *repl) exec(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		if r.room == 0 {
			return false, errors.New("no current room, use /join <room>")
		}
		_, err := r.account.PostMessage(ctx, r.room, line)
		return false, err
	}

	command, args, _ := strings.Cut(line, " ")
	switch command {
	case "/help":
		helpStyle.Println("/room <name>  /join <room>  /invite <room> <username>  /logout  /quit")
	case "/room":
		room, err := r.account.CreateRoom(ctx, args)
		if err != nil {
			return false, err
		}
		r.room = room.ID
	case "/join":
		id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
		if err != nil {
			return false, fmt.Errorf("bad room id %q", args)
		}
		r.room = id
	case "/invite":
		roomArg, username, _ := strings.Cut(args, " ")
		id, err := strconv.ParseInt(roomArg, 10, 64)
		if err != nil {
			return false, fmt.Errorf("bad room id %q", roomArg)
		}
		_, err = r.account.Invite(ctx, id, strings.TrimSpace(username))
		return false, err
	case "/logout":
		return true, r.account.Logout(ctx)
	case "/quit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %s", command)
	}
	return false, nil
}

func printEvent(envelope event.Envelope) {
	event.Match(envelope,
		func(e event.RoomCreated) struct{} {
			roomStyle.Printf("# room %d: %s\n", e.Room.ID, e.Room.Name)
			return struct{}{}
		},
		func(e event.MessageCreated) struct{} {
			messageStyle.Printf("[%s] room %d, user %d: %s\n",
				e.Message.Date.Local().Format(time.TimeOnly), e.Message.RoomID, e.Message.UserID, e.Message.Text)
			return struct{}{}
		},
	)
}
