package services_test

import (
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/app/services"
	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/auth"
	"github.com/shashiranjanraj/medcart/pkg/event"
	"github.com/shashiranjanraj/medcart/pkg/storage"
	"github.com/shashiranjanraj/medcart/pkg/workerpool"
)

type fixture struct {
	repos  repositories.Repositories
	disk   *storage.LocalDisk
	bus    *event.Bus
	tokens *auth.Issuer
	svc    *services.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	config.Set("BCRYPT_COST", "4")

	disk, err := storage.NewLocalDisk(t.TempDir(), "http://localhost:5000/uploads")
	require.NoError(t, err)

	pool := workerpool.New(2, 64)
	t.Cleanup(pool.Shutdown)

	f := &fixture{
		repos:  repositories.NewMemory(),
		disk:   disk,
		bus:    event.New(pool),
		tokens: auth.NewIssuer("test-secret", time.Hour),
	}
	f.svc = services.New(services.Deps{
		Repos:  f.repos,
		Events: f.bus,
		Disk:   disk,
		Tokens: f.tokens,
	})
	return f
}

// files lists every object stored on the fixture disk.
func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(f.disk.Root(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(f.disk.Root(), p)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

// listen captures events of one name.
func (f *fixture) listen(name string) <-chan event.Event {
	ch := make(chan event.Event, 16)
	f.bus.Listen(name, func(e event.Event) { ch <- e })
	return ch
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
}

func waitEvent(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("event not published")
	}
	return event.Event{}
}
