package userstore

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Settings is the profile document of a user.
type Settings struct {
	UID              string `json:"uid"`
	Email            string `json:"email"`
	Timezone         string `json:"timezone"`
	Language         string `json:"language"`
	IGN              string `json:"ign"`
	Highlight        string `json:"highlight"`
	Notify           bool   `json:"notify"`
	Active           bool   `json:"active"`
	SubscriptionPlan int    `json:"subscriptionPlan"`
}

func defaultSettings(uid, email string) Settings {
	return Settings{
		UID:       uid,
		Email:     email,
		Timezone:  "GMT+0",
		Language:  "en",
		Highlight: "#000000",
		Notify:    true,
		Active:    true,
	}
}

// Ensure returns the settings of uid, creating the default document on first use.
func (s *Store) Ensure(ctx context.Context, uid, email string) (*Settings, error) {
	unlock := s.locks.lock(uid)
	defer unlock()

	var settings Settings
	ok, err := s.load(ctx, userKey(uid, settingsFile), &settings)
	if err != nil {
		return nil, err
	}
	if ok {
		return &settings, nil
	}

	settings = defaultSettings(uid, email)
	if err := s.save(ctx, userKey(uid, settingsFile), settings); err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.String("uid", uid))
	return &settings, nil
}

func (s *Store) Get(ctx context.Context, uid string) (*Settings, error) {
	var settings Settings
	ok, err := s.load(ctx, userKey(uid, settingsFile), &settings)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return &settings, nil
}

// Update merges the fields present in patch into the stored settings. The uid never changes.
func (s *Store) Update(ctx context.Context, uid string, patch []byte) (*Settings, error) {
	unlock := s.locks.lock(uid)
	defer unlock()

	var settings Settings
	ok, err := s.load(ctx, userKey(uid, settingsFile), &settings)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	if err := json.Unmarshal(patch, &settings); err != nil {
		return nil, &ValidationError{Errors: []FieldError{{Field: "body", Message: fmt.Sprintf("invalid settings: %v", err)}}}
	}
	settings.UID = uid

	if err := s.save(ctx, userKey(uid, settingsFile), settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Delete removes every document of uid.
func (s *Store) Delete(ctx context.Context, uid string) error {
	unlock := s.locks.lock(uid)
	defer unlock()

	var settings Settings
	ok, err := s.load(ctx, userKey(uid, settingsFile), &settings)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}

	for _, file := range []string{settingsFile, logsFile, watchlistFile} {
		if err := s.blobs.Delete(ctx, userKey(uid, file)); err != nil {
			return fmt.Errorf("delete %s of %s: %w", file, uid, err)
		}
	}
	s.log.Info("user deleted", zap.String("uid", uid))
	return nil
}

// JoinBeta adds uid to the beta list once.
func (s *Store) JoinBeta(ctx context.Context, uid string) error {
	unlock := s.locks.lock(betaKey)
	defer unlock()

	var users []string
	if _, err := s.load(ctx, betaKey, &users); err != nil {
		return err
	}
	for _, u := range users {
		if u == uid {
			return nil
		}
	}
	return s.save(ctx, betaKey, append(users, uid))
}

// BetaUsers returns the uids on the beta list.
func (s *Store) BetaUsers(ctx context.Context) ([]string, error) {
	users := []string{}
	if _, err := s.load(ctx, betaKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}
