// Package web exposes the reflection backend over HTTP: voice-clone
// lifecycle, the reflect pipeline, plain synthesis and transcription,
// and a websocket feed of pipeline stage events.
package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/unknownking07/voice-mirror/pkg/audio"
	"github.com/unknownking07/voice-mirror/pkg/hub"
	"github.com/unknownking07/voice-mirror/pkg/reflection"
	"github.com/unknownking07/voice-mirror/pkg/voice"
)

// bodyLimit bounds uploads; clone samples run a few MB of WebM.
const bodyLimit = 50 * 1024 * 1024

// ServerConfig carries the server's collaborators. ElevenLabs is
// required; MiniMax may be nil when credentials are absent, in which
// case requests naming it are rejected up front.
type ServerConfig struct {
	ElevenLabs     voice.Provider
	MiniMax        voice.Provider
	Pipeline       *reflection.Pipeline
	Transcoder     *audio.Transcoder
	DefaultVoiceID string
	Logger         *slog.Logger
}

// Server is the HTTP front of the reflection backend.
type Server struct {
	app    *fiber.App
	logger *slog.Logger

	elevenlabs     voice.Provider
	minimax        voice.Provider
	pipeline       *reflection.Pipeline
	transcoder     *audio.Transcoder
	defaultVoiceID string

	events *hub.Hub
}

// NewServer creates the server and registers all routes.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "web.server")

	s := &Server{
		logger:         logger,
		elevenlabs:     cfg.ElevenLabs,
		minimax:        cfg.MiniMax,
		pipeline:       cfg.Pipeline,
		transcoder:     cfg.Transcoder,
		defaultVoiceID: cfg.DefaultVoiceID,
		events:         hub.New("events", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "voice-mirror",
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(fiberlogger.New())

	api := app.Group("/api")
	api.Post("/clone-voice", s.handleCloneVoice)
	api.Post("/delete-voice", s.handleDeleteVoice)
	api.Get("/voices", s.handleVoices)
	api.Post("/preview-voice", s.handlePreviewVoice)
	api.Post("/reflect", s.handleReflect)
	api.Post("/speak", s.handleSpeak)
	api.Post("/transcribe", s.handleTranscribe)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the hub and serves on addr. Blocks until Shutdown.
func (s *Server) Listen(addr string) error {
	go s.events.Run()
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// SetPipeline installs the reflection pipeline. Separate from
// NewServer because the pipeline's event sink comes from the server.
func (s *Server) SetPipeline(p *reflection.Pipeline) {
	s.pipeline = p
}

// EventSink returns a callback for pipeline stage events that fans
// them out to websocket clients.
func (s *Server) EventSink() reflection.EventFunc {
	return func(e reflection.Event) {
		if err := s.events.BroadcastJSON(e); err != nil {
			s.logger.Warn("event broadcast failed", "error", err)
		}
	}
}

// Shutdown gracefully stops the server and the event hub.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.events.Stop()
	return err
}

// handleEventsWS streams pipeline events to one websocket client.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	hub.NewClient(s.events, c).Run()
}

// provider resolves a request's provider field to a configured
// adapter. Empty means ElevenLabs.
func (s *Server) provider(name string) (voice.Provider, error) {
	pn, err := voice.ParseProviderName(name)
	if err != nil {
		return nil, err
	}
	if pn == voice.ProviderMiniMax {
		if s.minimax == nil {
			return nil, errMiniMaxNotConfigured
		}
		return s.minimax, nil
	}
	return s.elevenlabs, nil
}
