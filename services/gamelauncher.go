package services

import (
	"context"
	"errors"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Deep-link scheme and the fixed store download pages.
const (
	GameURLScheme = "vmagma://"
	PlayStoreURL  = "https://play.google.com/store/games?device=windows&pli=1"
	AppStoreURL   = "https://www.apple.com/mx/app-store/"
)

type Plataforma string

const (
	PlataformaAndroid Plataforma = "android"
	PlataformaIOS     Plataforma = "ios"
	PlataformaWeb     Plataforma = "web"
)

// Runtime describes where the launcher is running.
type Runtime interface {
	EsNativo() bool
	Plataforma() Plataforma
}

// URLOpener hands a URL to the OS. Opening a scheme nobody handles fails.
type URLOpener interface {
	Open(ctx context.Context, url string) error
}

// AppStateWatcher reports foreground/background transitions. A transition to
// background shortly after an open is the launch-confirmation heuristic.
type AppStateWatcher interface {
	Changes() <-chan bool
}

// InstallPrompter is the fallback UI when the game is not installed.
type InstallPrompter interface {
	ConfirmarDescarga(ctx context.Context) bool
	ElegirPlataforma(ctx context.Context) (Plataforma, bool)
}

// GameLauncher builds deep links into the game and opens them, degrading to a
// store-download prompt when the game is missing. No retries anywhere; every
// failure path ends in a single fallback action.
type GameLauncher struct {
	runtime       Runtime
	opener        URLOpener
	states        AppStateWatcher
	prompter      InstallPrompter
	testMode      bool
	launchTimeout time.Duration
}

func NewGameLauncher(runtime Runtime, opener URLOpener, states AppStateWatcher, prompter InstallPrompter, testMode bool) *GameLauncher {
	return &GameLauncher{
		runtime:       runtime,
		opener:        opener,
		states:        states,
		prompter:      prompter,
		testMode:      testMode,
		launchTimeout: 2 * time.Second,
	}
}

// SetTestMode toggles the launch-confirmation wait. In test mode the open is
// assumed to have worked.
func (g *GameLauncher) SetTestMode(enabled bool) {
	g.testMode = enabled
}

// BuildGameURL builds "<scheme>action?k=v&..." with percent-encoded values.
// No params means no query string. Keys are emitted in sorted order so the
// same input always yields the same URL.
func (g *GameLauncher) BuildGameURL(action string, params map[string]string) string {
	gameURL := GameURLScheme + action
	if len(params) == 0 {
		return gameURL
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+encodeComponent(params[key]))
	}
	return gameURL + "?" + strings.Join(pairs, "&")
}

// encodeComponent percent-encodes a query value, with spaces as %20 rather
// than +.
func encodeComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// LaunchGame opens the deep link for action. Off the native runtime, or when
// the open fails or is never confirmed, it degrades to the install prompt.
func (g *GameLauncher) LaunchGame(ctx context.Context, action string, params map[string]string) error {
	gameURL := g.BuildGameURL(action, params)

	if !g.runtime.EsNativo() {
		log.Printf("Modo web: el juego se abriría en la app móvil")
		return g.showInstallDialog(ctx)
	}

	if err := g.opener.Open(ctx, gameURL); err != nil {
		log.Printf("El juego no está instalado: %v", err)
		return g.showInstallDialog(ctx)
	}

	if err := g.waitForAppOpen(ctx); err != nil {
		log.Printf("Error al abrir el juego: %v", err)
		return g.showInstallDialog(ctx)
	}
	return nil
}

// LaunchAdventure opens the game on an adventure, optionally a specific one.
func (g *GameLauncher) LaunchAdventure(ctx context.Context, adventureID string) error {
	params := map[string]string{}
	if adventureID != "" {
		params["id"] = adventureID
	}
	return g.LaunchGame(ctx, "adventure", params)
}

// JoinEvent opens the game on an event.
func (g *GameLauncher) JoinEvent(ctx context.Context, eventID string) error {
	return g.LaunchGame(ctx, "event", map[string]string{"id": eventID})
}

// waitForAppOpen waits for the app to lose foreground as confirmation that
// the game took over, bounded by the launch timeout. Skipped in test mode.
func (g *GameLauncher) waitForAppOpen(ctx context.Context) error {
	if g.testMode || g.states == nil {
		return nil
	}

	timer := time.NewTimer(g.launchTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case active := <-g.states.Changes():
			if !active {
				return nil
			}
		case <-timer.C:
			return errors.New("timeout: el juego no se abrió")
		}
	}
}

func (g *GameLauncher) showInstallDialog(ctx context.Context) error {
	if !g.prompter.ConfirmarDescarga(ctx) {
		return nil
	}
	return g.openDownloadPage(ctx)
}

// openDownloadPage opens the store page for the current platform; on an
// unknown platform the prompter offers the choice.
func (g *GameLauncher) openDownloadPage(ctx context.Context) error {
	var downloadURL string
	switch g.runtime.Plataforma() {
	case PlataformaAndroid:
		downloadURL = PlayStoreURL
	case PlataformaIOS:
		downloadURL = AppStoreURL
	default:
		elegida, ok := g.prompter.ElegirPlataforma(ctx)
		if !ok {
			return nil
		}
		if elegida == PlataformaIOS {
			downloadURL = AppStoreURL
		} else {
			downloadURL = PlayStoreURL
		}
	}
	return g.opener.Open(ctx, downloadURL)
}

// IsGameInstalled probes the deep-link scheme. Always false off the native
// runtime. The probe has no side effect beyond the open attempt.
func (g *GameLauncher) IsGameInstalled(ctx context.Context) bool {
	if !g.runtime.EsNativo() {
		return false
	}
	if err := g.opener.Open(ctx, g.BuildGameURL("check", nil)); err != nil {
		return false
	}
	return true
}
