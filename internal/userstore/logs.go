package userstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
)

const (
	ModifierCreate = "CREATE"
	ModifierDelete = "DELETE"

	ActionTrade  = "TRADE"
	ActionPickup = "PICKUP"
	ActionDrop   = "DROP"

	TradeBuy  = "BUY"
	TradeSell = "SELL"
)

// FieldError describes one rejected field of a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
}

// ValidationError lists every rejected field of a request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// LogRequest is a trade log as submitted by a client.
type LogRequest struct {
	Modifier  string      `json:"modifier"`
	Action    string      `json:"action"`
	Item      *int64      `json:"item"`
	Price     *int64      `json:"price"`
	Quantity  *int64      `json:"quantity"`
	Timestamp *int64      `json:"timestamp"` // unix milliseconds
	TradeType null.String `json:"tradeType"`
}

// TradeLog is a stored trade log entry.
type TradeLog struct {
	ID        string      `json:"id"`
	Modifier  string      `json:"modifier"`
	Action    string      `json:"action"`
	Item      int64       `json:"item"`
	Price     int64       `json:"price"`
	Quantity  int64       `json:"quantity"`
	Timestamp int64       `json:"timestamp"`
	TradeType null.String `json:"tradeType"`
}

// NewTradeLog validates req and normalises it into a TradeLog with a fresh id.
// Price and quantity are taken as absolute values and a missing price counts
// as 0. A TRADE at price 0 is recorded as a PICKUP (buy) or DROP (sell).
func NewTradeLog(req LogRequest, now time.Time) (TradeLog, error) {
	var errs []FieldError
	reject := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	if req.Modifier != ModifierCreate && req.Modifier != ModifierDelete {
		reject("modifier", "Invalid modifier")
	}
	if req.Action != ActionTrade && req.Action != ActionPickup && req.Action != ActionDrop {
		reject("action", "Invalid action")
	}
	if req.Item == nil {
		reject("item", "Item must be an integer")
	}

	var price int64
	if req.Price != nil {
		price = abs(*req.Price)
	}

	var quantity int64
	if req.Quantity != nil {
		quantity = abs(*req.Quantity)
	}
	if quantity < 1 {
		reject("quantity", "Quantity must be a positive integer")
	}

	if req.Timestamp == nil {
		reject("timestamp", "Invalid timestamp")
	} else if *req.Timestamp > now.UnixMilli() {
		reject("timestamp", "Timestamp must be in the past")
	}

	tradeType := req.TradeType
	if req.Action == ActionTrade {
		if !tradeType.Valid || (tradeType.String != TradeBuy && tradeType.String != TradeSell) {
			reject("tradeType", "Invalid tradeType for TRADE action")
		}
	} else if tradeType.Valid {
		reject("tradeType", "tradeType must be null for non-TRADE actions")
	}

	if len(errs) > 0 {
		return TradeLog{}, &ValidationError{Errors: errs}
	}

	log := TradeLog{
		ID:        uuid.NewString(),
		Modifier:  req.Modifier,
		Action:    req.Action,
		Item:      *req.Item,
		Price:     price,
		Quantity:  quantity,
		Timestamp: *req.Timestamp,
		TradeType: tradeType,
	}
	if log.Action == ActionTrade && log.Price == 0 {
		if log.TradeType.String == TradeBuy {
			log.Action = ActionPickup
		} else {
			log.Action = ActionDrop
		}
		log.TradeType = null.String{}
	}
	return log, nil
}

// AddLog appends log to the trade logs of uid.
func (s *Store) AddLog(ctx context.Context, uid string, log TradeLog) error {
	unlock := s.locks.lock(uid)
	defer unlock()

	logs, err := s.logs(ctx, uid)
	if err != nil {
		return err
	}
	return s.save(ctx, userKey(uid, logsFile), append(logs, log))
}

// Logs returns the trade logs of uid in insertion order.
func (s *Store) Logs(ctx context.Context, uid string) ([]TradeLog, error) {
	return s.logs(ctx, uid)
}

// DeleteLog removes the log with the given id.
func (s *Store) DeleteLog(ctx context.Context, uid, id string) error {
	unlock := s.locks.lock(uid)
	defer unlock()

	logs, err := s.logs(ctx, uid)
	if err != nil {
		return err
	}
	for i, l := range logs {
		if l.ID == id {
			return s.save(ctx, userKey(uid, logsFile), append(logs[:i], logs[i+1:]...))
		}
	}
	return ErrLogNotFound
}

func (s *Store) logs(ctx context.Context, uid string) ([]TradeLog, error) {
	logs := []TradeLog{}
	if _, err := s.load(ctx, userKey(uid, logsFile), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
