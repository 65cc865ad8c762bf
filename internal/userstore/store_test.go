package userstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"runetick/pkg/storage/memory"

	"github.com/guregu/null/v6"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore() (*Store, *memory.Store) {
	blobs := memory.NewStore()
	return New(blobs, zap.NewNop()), blobs
}

func int64p(v int64) *int64 { return &v }

func validRequest() LogRequest {
	return LogRequest{
		Modifier:  ModifierCreate,
		Action:    ActionTrade,
		Item:      int64p(4151),
		Price:     int64p(1_500_000),
		Quantity:  int64p(2),
		Timestamp: int64p(testNow.Add(-time.Minute).UnixMilli()),
		TradeType: null.StringFrom(TradeBuy),
	}
}

// go test -v --run TestEnsureCreatesDefaults
func TestEnsureCreatesDefaults(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Get before Ensure: err = %v, want ErrUserNotFound", err)
	}

	got, err := store.Ensure(ctx, "u1", "a@b.c")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	want := Settings{
		UID:       "u1",
		Email:     "a@b.c",
		Timezone:  "GMT+0",
		Language:  "en",
		Highlight: "#000000",
		Notify:    true,
		Active:    true,
	}
	if *got != want {
		t.Errorf("settings = %+v, want %+v", *got, want)
	}

	// second call returns the stored document unchanged
	again, err := store.Ensure(ctx, "u1", "other@b.c")
	if err != nil {
		t.Fatal(err)
	}
	if again.Email != "a@b.c" {
		t.Errorf("email = %q, want the original", again.Email)
	}
}

// go test -v --run TestUpdateMergesFields
func TestUpdateMergesFields(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if _, err := store.Update(ctx, "u1", []byte(`{"ign":"Zezima"}`)); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Update of unknown user: err = %v", err)
	}

	if _, err := store.Ensure(ctx, "u1", "a@b.c"); err != nil {
		t.Fatal(err)
	}
	got, err := store.Update(ctx, "u1", []byte(`{"ign":"Zezima","notify":false,"uid":"hijack"}`))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.IGN != "Zezima" || got.Notify || got.UID != "u1" || got.Language != "en" {
		t.Errorf("settings = %+v", got)
	}

	stored, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if *stored != *got {
		t.Errorf("stored = %+v, want %+v", *stored, *got)
	}

	var verr *ValidationError
	if _, err := store.Update(ctx, "u1", []byte(`not json`)); !errors.As(err, &verr) {
		t.Errorf("invalid patch: err = %v, want ValidationError", err)
	}
}

// go test -v --run TestDeleteRemovesDocuments
func TestDeleteRemovesDocuments(t *testing.T) {
	store, blobs := newTestStore()
	ctx := context.Background()

	if err := store.Delete(ctx, "u1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Delete of unknown user: err = %v", err)
	}

	if _, err := store.Ensure(ctx, "u1", ""); err != nil {
		t.Fatal(err)
	}
	log, err := NewTradeLog(validRequest(), testNow)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.AddLog(ctx, "u1", log); err != nil {
		t.Fatal(err)
	}
	if err := store.AddToWatchlist(ctx, "u1", 2); err != nil {
		t.Fatal(err)
	}
	if err := store.JoinBeta(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	keys := blobs.Keys()
	if len(keys) != 1 || keys[0] != betaKey {
		t.Errorf("remaining keys = %v, want only %s", keys, betaKey)
	}
}

// go test -v --run TestNewTradeLogValidation
func TestNewTradeLogValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*LogRequest)
		field  string
	}{
		{"bad modifier", func(r *LogRequest) { r.Modifier = "UPDATE" }, "modifier"},
		{"bad action", func(r *LogRequest) { r.Action = "SELL"; r.TradeType = null.String{} }, "action"},
		{"missing item", func(r *LogRequest) { r.Item = nil }, "item"},
		{"zero quantity", func(r *LogRequest) { r.Quantity = int64p(0) }, "quantity"},
		{"missing quantity", func(r *LogRequest) { r.Quantity = nil }, "quantity"},
		{"future timestamp", func(r *LogRequest) { r.Timestamp = int64p(testNow.Add(time.Minute).UnixMilli()) }, "timestamp"},
		{"missing timestamp", func(r *LogRequest) { r.Timestamp = nil }, "timestamp"},
		{"trade without type", func(r *LogRequest) { r.TradeType = null.String{} }, "tradeType"},
		{"trade with unknown type", func(r *LogRequest) { r.TradeType = null.StringFrom("HOLD") }, "tradeType"},
		{"pickup with type", func(r *LogRequest) { r.Action = ActionPickup }, "tradeType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.modify(&req)

			_, err := NewTradeLog(req, testNow)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if len(verr.Errors) != 1 || verr.Errors[0].Field != tt.field {
				t.Errorf("errors = %+v, want one on %q", verr.Errors, tt.field)
			}
		})
	}
}

// go test -v --run TestNewTradeLogModifierMessage
func TestNewTradeLogModifierMessage(t *testing.T) {
	req := validRequest()
	req.Modifier = "UPDATE"

	_, err := NewTradeLog(req, testNow)
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Errors) != 1 {
		t.Fatalf("err = %v, want one ValidationError", err)
	}
	if got := verr.Errors[0]; got.Field != "modifier" || got.Message != "Invalid modifier" {
		t.Errorf("error = %+v, want modifier / Invalid modifier", got)
	}
}

// go test -v --run TestNewTradeLogNormalises
func TestNewTradeLogNormalises(t *testing.T) {
	req := validRequest()
	req.Price = int64p(-100)
	req.Quantity = int64p(-3)

	log, err := NewTradeLog(req, testNow)
	if err != nil {
		t.Fatalf("NewTradeLog: %v", err)
	}
	if log.Price != 100 || log.Quantity != 3 {
		t.Errorf("price/quantity = %d/%d, want 100/3", log.Price, log.Quantity)
	}
	if log.ID == "" {
		t.Error("id not generated")
	}
	if log.Action != ActionTrade || log.TradeType.String != TradeBuy {
		t.Errorf("action = %s %v", log.Action, log.TradeType)
	}

	other, err := NewTradeLog(req, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == log.ID {
		t.Error("ids are not unique")
	}
}

// go test -v --run TestFreeTradeBecomesPickupOrDrop
func TestFreeTradeBecomesPickupOrDrop(t *testing.T) {
	tests := []struct {
		tradeType string
		price     *int64
		want      string
	}{
		{TradeBuy, int64p(0), ActionPickup},
		{TradeSell, int64p(0), ActionDrop},
		{TradeBuy, nil, ActionPickup},
	}
	for _, tt := range tests {
		req := validRequest()
		req.TradeType = null.StringFrom(tt.tradeType)
		req.Price = tt.price

		log, err := NewTradeLog(req, testNow)
		if err != nil {
			t.Fatalf("NewTradeLog(%s): %v", tt.tradeType, err)
		}
		if log.Action != tt.want {
			t.Errorf("%s at 0: action = %s, want %s", tt.tradeType, log.Action, tt.want)
		}
		if log.TradeType.Valid {
			t.Errorf("%s at 0: tradeType = %q, want null", tt.tradeType, log.TradeType.String)
		}
	}
}

// go test -v --run TestLogs
func TestLogs(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	logs, err := store.Logs(ctx, "u1")
	if err != nil || len(logs) != 0 {
		t.Fatalf("Logs of new user = %v, %v", logs, err)
	}

	var ids []string
	for range 3 {
		log, err := NewTradeLog(validRequest(), testNow)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.AddLog(ctx, "u1", log); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, log.ID)
	}

	if err := store.DeleteLog(ctx, "u1", ids[1]); err != nil {
		t.Fatalf("DeleteLog: %v", err)
	}
	if err := store.DeleteLog(ctx, "u1", ids[1]); !errors.Is(err, ErrLogNotFound) {
		t.Errorf("second DeleteLog: err = %v, want ErrLogNotFound", err)
	}

	logs, err = store.Logs(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 || logs[0].ID != ids[0] || logs[1].ID != ids[2] {
		t.Errorf("logs = %+v", logs)
	}
}

// go test -v --run TestWatchlist
func TestWatchlist(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	for _, id := range []int64{2, 4151, 2} {
		if err := store.AddToWatchlist(ctx, "u1", id); err != nil {
			t.Fatal(err)
		}
	}
	items, err := store.Watchlist(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0] != 2 || items[1] != 4151 {
		t.Errorf("watchlist = %v, want [2 4151]", items)
	}

	if err := store.RemoveFromWatchlist(ctx, "u1", 2); err != nil {
		t.Fatalf("RemoveFromWatchlist: %v", err)
	}
	if err := store.RemoveFromWatchlist(ctx, "u1", 2); !errors.Is(err, ErrWatchlistItemNotFound) {
		t.Errorf("second remove: err = %v, want ErrWatchlistItemNotFound", err)
	}
}

// go test -v --run TestJoinBetaOnce
func TestJoinBetaOnce(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	for _, uid := range []string{"u1", "u2", "u1"} {
		if err := store.JoinBeta(ctx, uid); err != nil {
			t.Fatal(err)
		}
	}
	users, err := store.BetaUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Errorf("beta users = %v", users)
	}
}

// go test -v --run TestConcurrentAddLog
func TestConcurrentAddLog(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log, err := NewTradeLog(validRequest(), testNow)
			if err != nil {
				t.Error(err)
				return
			}
			if err := store.AddLog(ctx, "u1", log); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	logs, err := store.Logs(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != n {
		t.Errorf("len = %d, want %d", len(logs), n)
	}
}
