package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/flirtchampion/backend/internal/ai/gemini"
	"github.com/flirtchampion/backend/internal/config"
	"github.com/flirtchampion/backend/internal/flow"
	"github.com/flirtchampion/backend/internal/game"
	"github.com/flirtchampion/backend/internal/store"
	"github.com/flirtchampion/backend/internal/ws"
	staticserver "github.com/flirtchampion/backend/static"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Flirt Champion - AI chat game server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT             Port to listen on (default: 8080)
  GEMINI_API_KEY   Server-side default Gemini API key (optional; players
                   may supply their own at game start)
  GEMINI_BASE_URL  Custom Gemini API base URL (optional)
  DB_PATH          SQLite database path (default: flirtchampion.db)
  EXPORT_ENABLED   Export finished transcripts to file (default: false)
  EXPORT_FILE      Path for exported transcripts (default: ./flirtchampion-transcripts.txt)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000

Visit http://localhost:8080 after starting the server.
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Flirt Champion %s\n", version)
		return
	}

	port := *portFlag
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	cfg := config.FromEnv()

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Seed the server-side credential if one is configured and none is stored.
	if cfg.GeminiKey != "" {
		if _, err := db.Credential(); err == store.ErrNoCredential {
			if err := db.SaveCredential(cfg.GeminiKey); err != nil {
				zerologlog.Error().Err(err).Msg("failed to seed credential")
			}
		}
	}

	factory := flow.Factory(func(apiKey string) (game.Generator, game.Summarizer) {
		client := gemini.New(apiKey, cfg.GeminiBaseURL)
		return client, client
	})

	sock := ws.New(db, db, factory, cfg)
	io := sock.Mount(r)
	defer io.Close()

	// Setup catalogue
	r.GET("/api/characters", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"characters":        game.Characters(),
			"roastDifficulties": game.RoastDifficulties(),
		})
	})

	// Credential management: the key is only ever validated by a live probe.
	r.GET("/api/credential/status", func(c *gin.Context) {
		key, err := db.Credential()
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"stored": false})
			return
		}
		suffix := key
		if len(suffix) > 6 {
			suffix = suffix[len(suffix)-6:]
		}
		c.JSON(http.StatusOK, gin.H{"stored": true, "suffix": suffix})
	})
	r.POST("/api/credential", func(c *gin.Context) {
		var req struct {
			APIKey string `json:"apiKey"`
		}
		if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.APIKey) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api_key_required"})
			return
		}
		key := strings.TrimSpace(req.APIKey)
		client := gemini.New(key, cfg.GeminiBaseURL)
		if err := client.Probe(c.Request.Context()); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "credential_invalid"})
			return
		}
		if err := db.SaveCredential(key); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.DELETE("/api/credential", func(c *gin.Context) {
		if err := db.DeleteCredential(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Leaderboards
	r.GET("/api/leaderboard/:mode", func(c *gin.Context) {
		mode := game.Mode(c.Param("mode"))
		if mode != game.ModeRizz && mode != game.ModeRoast {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_mode"})
			return
		}
		entries, err := db.List(mode)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"mode": mode, "entries": entries})
	})
	r.DELETE("/api/leaderboard/:mode", func(c *gin.Context) {
		mode := game.Mode(c.Param("mode"))
		if mode != game.ModeRizz && mode != game.ModeRoast {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_mode"})
			return
		}
		if err := db.Clear(mode); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Serve the embedded landing page for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
