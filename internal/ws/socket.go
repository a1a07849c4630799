package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/flirtchampion/backend/internal/config"
	"github.com/flirtchampion/backend/internal/flow"
	"github.com/flirtchampion/backend/internal/game"
	"github.com/flirtchampion/backend/internal/store"
)

type ConnCtx struct {
	Flow *flow.Flow
}

type Server struct {
	creds   store.CredentialStore
	boards  store.LeaderboardStore
	factory flow.Factory
	config  config.Config
}

func New(creds store.CredentialStore, boards store.LeaderboardStore, factory flow.Factory, cfg config.Config) *Server {
	return &Server{creds: creds, boards: boards, factory: factory, config: cfg}
}

// Mount attaches the Socket.IO server with handlers to the given Gin engine.
// Each connection gets its own flow; the server pushes session state, ticks
// and the end result as they happen.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{Flow: flow.New(srv.creds, srv.boards, srv.factory)})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// game:characters
	io.OnEvent("/", "game:characters", func(s socketio.Conn) map[string]any {
		return map[string]any{
			"characters":        game.Characters(),
			"roastDifficulties": game.RoastDifficulties(),
		}
	})

	// game:selectMode
	io.OnEvent("/", "game:selectMode", func(s socketio.Conn, payload struct {
		Mode game.Mode `json:"mode"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		screen, err := ctx.Flow.SelectMode(payload.Mode)
		if err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("sid", s.ID()).Str("mode", string(payload.Mode)).Msg("game:selectMode")
		return map[string]any{"screen": string(screen)}
	})

	// game:back
	io.OnEvent("/", "game:back", func(s socketio.Conn) map[string]any {
		ctx := s.Context().(*ConnCtx)
		screen := ctx.Flow.Back()
		log.Info().Str("sid", s.ID()).Msg("game:back")
		return map[string]any{"screen": string(screen)}
	})

	// game:start
	io.OnEvent("/", "game:start", func(s socketio.Conn, payload flow.StartRequest) map[string]any {
		ctx := s.Context().(*ConnCtx)
		sess, err := ctx.Flow.StartGame(context.Background(), payload)
		if err != nil {
			return srv.err(s, startErrCode(err), err.Error())
		}
		log.Info().Str("sid", s.ID()).Str("sessionId", sess.ID).
			Str("mode", string(sess.Settings.Mode)).Str("difficulty", string(sess.Settings.Difficulty)).
			Msg("game:start")
		srv.launch(s, ctx.Flow, sess)
		return map[string]any{"sessionId": sess.ID, "screen": string(flow.ScreenSession)}
	})

	// game:send
	io.OnEvent("/", "game:send", func(s socketio.Conn, payload struct {
		Text string `json:"text"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		sess := ctx.Flow.Session()
		if sess == nil {
			return srv.err(s, "no_session", "No active session")
		}
		turn, err := sess.Send(context.Background(), payload.Text)
		if err != nil {
			return srv.err(s, sendErrCode(err), err.Error())
		}
		snap := sess.Snapshot()
		log.Info().Str("sid", s.ID()).Int("score", snap.Score).Int("points", turn.Score).
			Bool("fallback", turn.Fallback).Msg("game:send")
		return map[string]any{"turn": turn, "state": snap}
	})

	// game:state
	io.OnEvent("/", "game:state", func(s socketio.Conn) map[string]any {
		ctx := s.Context().(*ConnCtx)
		sess := ctx.Flow.Session()
		if sess == nil {
			return map[string]any{"screen": string(ctx.Flow.Screen())}
		}
		return map[string]any{"screen": string(ctx.Flow.Screen()), "state": sess.Snapshot()}
	})

	// game:replay
	io.OnEvent("/", "game:replay", func(s socketio.Conn) map[string]any {
		ctx := s.Context().(*ConnCtx)
		sess, err := ctx.Flow.Replay()
		if err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("sid", s.ID()).Str("sessionId", sess.ID).Msg("game:replay")
		srv.launch(s, ctx.Flow, sess)
		return map[string]any{"sessionId": sess.ID, "screen": string(flow.ScreenSession)}
	})

	// game:menu
	io.OnEvent("/", "game:menu", func(s socketio.Conn) map[string]any {
		ctx := s.Context().(*ConnCtx)
		screen, err := ctx.Flow.MainMenu()
		if err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		return map[string]any{"screen": string(screen)}
	})

	// leaderboard:list
	io.OnEvent("/", "leaderboard:list", func(s socketio.Conn, payload struct {
		Mode game.Mode `json:"mode"`
	}) map[string]any {
		records, err := srv.boards.List(payload.Mode)
		if err != nil {
			return srv.err(s, "storage_error", err.Error())
		}
		return map[string]any{"mode": string(payload.Mode), "entries": records}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx.Flow != nil {
			if sess := ctx.Flow.Session(); sess != nil {
				sess.Abandon()
			}
		}
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// launch wires the session's push callbacks to this connection and starts it
// in the background: the probe and greeting can take a while and must not
// block the event loop.
func (srv *Server) launch(s socketio.Conn, f *flow.Flow, sess *game.Session) {
	sess.OnTick = func(left int) {
		s.Emit("game:tick", map[string]any{"timeLeft": left})
	}
	sess.OnEnd = func(result *game.Result) {
		if err := f.GameOver(result); err != nil {
			log.Error().Err(err).Str("sid", s.ID()).Msg("failed to record game result")
		}
		if srv.config.ExportEnabled {
			if err := game.ExportResult(sess.Settings, result, srv.config.ExportFile); err != nil {
				log.Error().Err(err).Str("sid", s.ID()).Msg("failed to export transcript")
			} else {
				log.Info().Str("sid", s.ID()).Str("file", srv.config.ExportFile).Msg("exported transcript")
			}
		}
		s.Emit("game:ended", map[string]any{"result": result, "screen": string(flow.ScreenResults)})
	}
	go func() {
		if err := sess.Start(context.Background()); err != nil {
			log.Error().Err(err).Str("sid", s.ID()).Msg("session start failed")
			s.Emit("game:error", map[string]any{"code": "connection_error", "message": "Failed to connect to Gemini API. Please check your API key."})
			return
		}
		s.Emit("game:state", map[string]any{"screen": string(flow.ScreenSession), "state": sess.Snapshot()})
	}()
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message, "code": code}
}

func startErrCode(err error) string {
	switch err {
	case flow.ErrNameRequired:
		return "name_required"
	case flow.ErrSelectionRequired:
		return "selection_required"
	case flow.ErrCredentialRequired:
		return "credential_required"
	case flow.ErrCredentialInvalid:
		return "credential_invalid"
	case flow.ErrWrongScreen:
		return "wrong_screen"
	default:
		return "bad_request"
	}
}

func sendErrCode(err error) string {
	switch err {
	case game.ErrEmptyMessage:
		return "empty_message"
	case game.ErrRequestInFlight:
		return "request_in_flight"
	case game.ErrSessionOver:
		return "session_over"
	default:
		return "bad_request"
	}
}
