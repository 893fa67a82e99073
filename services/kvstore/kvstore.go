// Package kvstore is a unique, database/sql-backed key/value service.
// It demonstrates the runtime's unique-name-collision scenario: two
// instances both configured with the same Name both call SetUnique in
// their own Init, and only the first succeeds.
//
// Grounded on the teacher's examples/todo-api TodoService
// (examples/todo-api/services/todo_service.go) for the database/sql
// query style, generalized from an HTTP-request-scoped service to a
// Dispatch-driven one addressed by envelope header.
package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver

	"github.com/fluxorio/actorrt/pkg/actor"
)

// Config is the JSON payload passed to Init: which driver to open, the
// DSN, and the unique name this instance registers under (empty means
// "don't register a unique name", letting a config deploy more than one
// non-colliding instance for testing).
type Config struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	Name   string `json:"name"`
}

// request is the Dispatch wire format: a get or put against a single
// key/value table.
type request struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

type response struct {
	OK    bool   `json:"ok"`
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// Service is the runtime's unique key/value store: one logical instance
// per unique Name, backed by a database/sql handle.
type Service struct {
	actor.BaseService
	db    *sql.DB
	ready bool
}

// New is registered as the "kvstore" service type's factory.
func New() actor.Service {
	return &Service{}
}

func (s *Service) Init(ctx actor.ServiceContext, config []byte) bool {
	s.Ctx = ctx

	var cfg Config
	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return false
		}
	}
	if cfg.Driver == "" {
		cfg.Driver = "sqlite3"
	}
	if cfg.DSN == "" {
		cfg.DSN = "file::memory:?cache=shared"
	}

	if cfg.Name != "" && !ctx.SetUnique(cfg.Name) {
		// Name already claimed by another kvstore instance: this
		// instance stays un-ok and is torn down by the worker without
		// ever reaching Start.
		return false
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return false
	}
	if _, err := db.ExecContext(context.Background(),
		`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return false
	}

	s.db = db
	s.ready = true
	return true
}

func (s *Service) Dispatch(env *actor.Envelope) {
	var req request
	if err := json.Unmarshal(env.Payload(), &req); err != nil {
		s.reply(env, response{Error: "invalid request: " + err.Error()})
		return
	}

	switch req.Op {
	case "put":
		s.put(env, req)
	case "get":
		s.get(env, req)
	default:
		s.reply(env, response{Error: "unknown op: " + req.Op})
	}
}

func (s *Service) put(env *actor.Envelope, req request) {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO kv (key, value) VALUES ($1, $2)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		req.Key, req.Value)
	if err != nil {
		s.reply(env, response{Error: fmt.Sprintf("put failed: %v", err)})
		return
	}
	s.reply(env, response{OK: true})
}

func (s *Service) get(env *actor.Envelope, req request) {
	var value string
	err := s.db.QueryRowContext(context.Background(),
		`SELECT value FROM kv WHERE key = $1`, req.Key).Scan(&value)
	if err == sql.ErrNoRows {
		s.reply(env, response{Error: "not found"})
		return
	}
	if err != nil {
		s.reply(env, response{Error: fmt.Sprintf("get failed: %v", err)})
		return
	}
	s.reply(env, response{OK: true, Value: value})
}

func (s *Service) reply(env *actor.Envelope, resp response) {
	payload, _ := json.Marshal(resp)
	_ = s.Ctx.Response(env.Sender, env.Header, payload, env.Session)
}

func (s *Service) Destroy() {
	if s.db != nil {
		s.db.Close()
	}
}
