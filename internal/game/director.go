package game

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kushgupta-hiver/mahjongd/internal/actor"
	"github.com/kushgupta-hiver/mahjongd/internal/engine"
	"github.com/kushgupta-hiver/mahjongd/internal/proto"
	"github.com/kushgupta-hiver/mahjongd/internal/session"
)

// ErrUnknownCredentials is returned by Authenticate when the presented
// token does not belong to any account.
var ErrUnknownCredentials = errors.New("no account for credentials")

// startingPoints is the score a freshly created account begins with.
const startingPoints = 25000

// Director is the global coordinator: it owns the account table and starts
// match controllers. One per process. All state behind its mailbox.
type Director struct {
	mbox  *actor.Mailbox
	rules engine.Rules
	log   zerolog.Logger

	// accounts maps credential token -> account; matchSeq numbers matches.
	// Both guarded by the mailbox.
	accounts map[string]session.Account
	matchSeq int64
}

func NewDirector(rules engine.Rules, log zerolog.Logger) *Director {
	return &Director{
		mbox:     actor.New(64),
		rules:    rules,
		log:      log.With().Str("component", "director").Logger(),
		accounts: make(map[string]session.Account),
	}
}

// Close stops the director's mailbox.
func (d *Director) Close() {
	d.mbox.Stop(nil)
}

// CreateAccount registers a new account and returns its credentials along
// with the initial account data.
func (d *Director) CreateAccount(ctx context.Context) (session.Account, error) {
	var account session.Account
	err := d.mbox.Call(ctx, func() error {
		account = session.Account{
			Credentials: proto.Credentials{Token: uuid.NewString()},
			Data: proto.AccountData{
				ID:     uuid.NewString(),
				Points: startingPoints,
			},
		}
		d.accounts[account.Credentials.Token] = account
		d.log.Info().Str("account", account.Data.ID).Msg("created account")
		return nil
	})
	return account, err
}

// Authenticate resolves existing credentials to their account.
func (d *Director) Authenticate(ctx context.Context, creds proto.Credentials) (session.Account, error) {
	var account session.Account
	err := d.mbox.Call(ctx, func() error {
		found, ok := d.accounts[creds.Token]
		if !ok {
			return ErrUnknownCredentials
		}
		account = found
		return nil
	})
	return account, err
}

// StartMatch spawns a new match controller and returns its handle.
func (d *Director) StartMatch(ctx context.Context) (session.Match, error) {
	var m *Match
	err := d.mbox.Call(ctx, func() error {
		d.matchSeq++
		m = newMatch("match-"+strconv.FormatInt(d.matchSeq, 10), d.rules, d.log)
		d.log.Info().Str("match", m.ID()).Msg("started match")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
