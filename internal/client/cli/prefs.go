package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/agentdeck/internal/store"
)

// ShowPrefs prints the signed-in user's preferences. In local mode they come
// from the local cache.
func (a *App) ShowPrefs(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context) error {
		var prefs map[string]any
		if a.data.Mode() == store.ModeLocal {
			p, err := a.prefs.Preferences(ctx)
			if err != nil {
				return err
			}
			prefs = p
		} else {
			profile, err := a.data.GetUserProfile(ctx)
			if err != nil {
				return err
			}
			if profile != nil {
				prefs = profile.Preferences
			}
		}
		a.printPrefs(prefs)
		return nil
	})
}

// SetPrefs reads name=value lines and stores them as the preferences.
func (a *App) SetPrefs(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context) error {
		lines, err := getKeyValues(a.reader, a.out)
		if err != nil {
			return err
		}
		prefs, err := parseKeyValues(lines)
		if err != nil {
			return err
		}
		profile, err := a.data.UpdateUserProfile(ctx, prefs)
		if err != nil {
			return err
		}
		if profile == nil {
			fmt.Fprintln(a.out, "Not saved: no signed-in user")
			return nil
		}
		a.printPrefs(profile.Preferences)
		return nil
	})
}

func (a *App) printPrefs(prefs map[string]any) {
	if len(prefs) == 0 {
		fmt.Fprintln(a.out, "No preferences")
		return
	}
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "%s=%v\n", k, prefs[k])
	}
}

func parseKeyValues(lines []string) (map[string]any, error) {
	prefs := make(map[string]any, len(lines))
	for _, l := range lines {
		k, v, ok := strings.Cut(l, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected name=value, got %q", l)
		}
		prefs[k] = strings.TrimSpace(v)
	}
	return prefs, nil
}
