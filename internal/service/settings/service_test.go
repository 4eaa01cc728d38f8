package settings_test

import (
	"context"
	"errors"
	"testing"

	model "github.com/heva-hub/assistant/backend/internal/model/settings"
	settings "github.com/heva-hub/assistant/backend/internal/service/settings"
)

func TestServiceUpdate(t *testing.T) {
	svc := settings.NewService(model.Default())
	ctx := context.Background()

	next := svc.Get(ctx)
	next.Preferences.Theme = "dark"
	next.Notifications.NewOpportunities = true

	if _, err := svc.Update(ctx, next); err != nil {
		t.Fatalf("Update err: %v", err)
	}

	got := svc.Get(ctx)
	if got.Preferences.Theme != "dark" || !got.Notifications.NewOpportunities {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestServiceUpdateRejectsInvalid(t *testing.T) {
	svc := settings.NewService(model.Default())
	ctx := context.Background()

	bad := svc.Get(ctx)
	bad.Preferences.Currency = "BTC"

	if _, err := svc.Update(ctx, bad); !errors.Is(err, model.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	if got := svc.Get(ctx); got.Preferences.Currency != "CAD" {
		t.Fatalf("invalid update leaked into state: %s", got.Preferences.Currency)
	}
}

func TestServiceReset(t *testing.T) {
	svc := settings.NewService(model.Default())
	ctx := context.Background()

	next := svc.Get(ctx)
	next.Profile.Name = "Alex"
	if _, err := svc.Update(ctx, next); err != nil {
		t.Fatalf("Update err: %v", err)
	}
	if got := svc.Reset(ctx); got.Profile.Name != "Sarah Johnson" {
		t.Fatalf("expected defaults after reset, got %s", got.Profile.Name)
	}
}
