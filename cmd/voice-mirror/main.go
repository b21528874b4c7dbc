// voice-mirror: backend for a voice-reflection journal.
// Records of the user's speech are transcribed, reflected on by a
// language model, and spoken back through the user's cloned voice.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/unknownking07/voice-mirror/internal/config"
	"github.com/unknownking07/voice-mirror/internal/log"
	"github.com/unknownking07/voice-mirror/pkg/audio"
	"github.com/unknownking07/voice-mirror/pkg/inference"
	"github.com/unknownking07/voice-mirror/pkg/reflection"
	"github.com/unknownking07/voice-mirror/pkg/voice"
	"github.com/unknownking07/voice-mirror/pkg/web"
)

var version = "1.0.0"

var (
	port     = flag.String("port", "", "HTTP listen port (overrides PORT)")
	logLevel = flag.String("log-level", "", "log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log.Init(cfg.LogLevel)
	logger := log.With("service", "voice-mirror", "version", version)

	if err := cfg.Validate(); err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	elevenlabs, err := voice.NewElevenLabs(
		voice.WithAPIKey(cfg.ElevenLabsKey),
		voice.WithLogger(logger),
	)
	if err != nil {
		logger.Error("elevenlabs init failed", "error", err)
		os.Exit(1)
	}
	defer elevenlabs.Close()

	var minimax voice.Provider
	if cfg.HasMiniMax() {
		mm, err := voice.NewMiniMax(
			voice.WithAPIKey(cfg.MiniMaxKey),
			voice.WithGroupID(cfg.MiniMaxGroupID),
			voice.WithLogger(logger),
		)
		if err != nil {
			logger.Error("minimax init failed", "error", err)
			os.Exit(1)
		}
		defer mm.Close()
		minimax = mm
	} else {
		logger.Info("minimax credentials absent, provider disabled")
	}

	llm, err := inference.NewClient(
		inference.WithAPIKey(cfg.AnthropicKey),
		inference.WithLogger(logger),
	)
	if err != nil {
		logger.Error("inference init failed", "error", err)
		os.Exit(1)
	}
	defer llm.Close()

	transcoder := audio.NewTranscoder(logger)
	if !transcoder.Available() {
		logger.Warn("ffmpeg not found, minimax clone uploads limited to WAV")
	}

	server := web.NewServer(web.ServerConfig{
		ElevenLabs:     elevenlabs,
		MiniMax:        minimax,
		Transcoder:     transcoder,
		DefaultVoiceID: cfg.ElevenLabsVoiceID,
		Logger:         logger,
	})

	pipeline := reflection.NewPipeline(elevenlabs, llm,
		reflection.WithLogger(logger),
		reflection.WithEvents(server.EventSink()),
	)
	server.SetPipeline(pipeline)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(":" + cfg.Port)
	}()
	logger.Info("server started", "port", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		if err := server.Shutdown(); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
