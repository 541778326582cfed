package cli

import (
	"bytes"
	"context"
	"encoding/binary"
	"math/rand"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princebabou/wishCraft/internal/app"
	"github.com/princebabou/wishCraft/internal/client"
	"github.com/princebabou/wishCraft/internal/database"
	"github.com/princebabou/wishCraft/internal/handlers"
	"github.com/princebabou/wishCraft/internal/metrics"
	"github.com/princebabou/wishCraft/internal/models"
	"github.com/princebabou/wishCraft/internal/reveal"
)

func tempDSN(t *testing.T) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), "cards.db")
}

// newServer serves the card API from a fresh SQLite store and returns its
// URL together with the store.
func newServer(t *testing.T) (string, database.CardStore) {
	t.Helper()

	db, err := database.NewSQLite(tempDSN(t))
	require.NoError(t, err)
	store := database.NewSQLiteCardStore(db)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	srv := httptest.NewServer(handlers.NewRouter(&app.App{Cards: store, Metrics: metrics.New()}))
	t.Cleanup(srv.Close)
	return srv.URL, store
}

// loudPCM is white noise well above the blow threshold, encoded as S16LE.
func loudPCM(samples int) []byte {
	rng := rand.New(rand.NewSource(7))
	var buf bytes.Buffer
	for i := 0; i < samples; i++ {
		_ = binary.Write(&buf, binary.LittleEndian, int16((rng.Float64()*2-1)*0.9*32767))
	}
	return buf.Bytes()
}

func TestMigrateCommand(t *testing.T) {
	dsn := tempDSN(t)

	out, err := execute(t, nil, "migrate", "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema up to date")

	out, err = execute(t, nil, "migrate", "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")
}

func TestSeedCommand(t *testing.T) {
	dsn := tempDSN(t)
	file := filepath.Join(t.TempDir(), "cards.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`cards:
  - name: Alice
    age: 30
    message: Happy birthday!
  - slug: bob-party
    name: Bob
    age: 41
    message: Cheers
`), 0o600))

	out, err := execute(t, nil, "seed", "--file", file, "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "2 inserted, 0 skipped")

	out, err = execute(t, nil, "seed", "--file", file, "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "0 inserted, 2 skipped")

	store, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	defer store.Close()
	card, err := store.GetBySlug(context.Background(), "alice-30")
	require.NoError(t, err)
	assert.Equal(t, "Happy birthday!", card.Message)
}

func TestSeedCommand_Stdin(t *testing.T) {
	in := strings.NewReader("cards:\n  - name: Carol\n    age: 5\n    message: Yay\n")

	out, err := execute(t, in, "seed", "--file", "-", "--db-dsn", tempDSN(t))
	require.NoError(t, err)
	assert.Contains(t, out, "1 inserted, 0 skipped")
}

func TestSeedCommand_RequiresFile(t *testing.T) {
	_, err := execute(t, nil, "seed", "--db-dsn", tempDSN(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestCreateCommand(t *testing.T) {
	url, _ := newServer(t)

	out, err := execute(t, nil, "create", "--server", url,
		"--name", "Mary Jane", "--age", "7", "--message", "Have a great day!")
	require.NoError(t, err)
	assert.Contains(t, out, "Card created for Mary Jane (mary-jane-7)")
	assert.Contains(t, out, url+"/card/mary-jane-7")

	_, err = execute(t, nil, "create", "--server", url,
		"--name", "Mary Jane", "--age", "7", "--message", "Again")
	assert.ErrorIs(t, err, client.ErrSlugTaken)
}

func TestCreateCommand_RequiredFlags(t *testing.T) {
	_, err := execute(t, nil, "create", "--server", "http://localhost:1", "--name", "Alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestOpenCommand_BlowsOutCandles(t *testing.T) {
	url, store := newServer(t)
	require.NoError(t, store.Create(context.Background(), &models.Card{
		Slug: "alice-30", Name: "Alice", Age: 30, Message: "Have the best day!",
	}))

	in := bytes.NewReader(loudPCM(4 * reveal.DefaultFFTSize))
	out, err := execute(t, in, "open", "alice-30", "--server", url, "--fps", "200")
	require.NoError(t, err)

	assert.Contains(t, out, "Baking your card...")
	assert.Contains(t, out, "Happy Birthday, Alice!")
	assert.Contains(t, out, "You're 30 years old today!")
	assert.Contains(t, out, "Listening...")
	assert.Contains(t, out, "  ~   ~   ~   ~   ~")
	assert.True(t, strings.HasSuffix(out, "Have the best day!\n"), out)
}

func TestOpenCommand_NotFound(t *testing.T) {
	url, _ := newServer(t)

	out, err := execute(t, bytes.NewReader(nil), "open", "nobody-1", "--server", url)
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Contains(t, out, "404 | Not Found")
	assert.NotContains(t, out, "Happy Birthday")
}

func TestOpenCommand_InvalidFPS(t *testing.T) {
	_, err := execute(t, bytes.NewReader(nil), "open", "alice-30", "--fps", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--fps")
}

func TestOpenCommand_MissingAudioFile(t *testing.T) {
	url, _ := newServer(t)

	_, err := execute(t, nil, "open", "alice-30", "--server", url,
		"--audio", filepath.Join(t.TempDir(), "missing.pcm"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open audio")
}

func TestServeCommand_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--port", strconv.Itoa(port), "--db-dsn", tempDSN(t), "--log-level", "off"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	healthz := "http://127.0.0.1:" + strconv.Itoa(port) + "/healthz"
	assert.Eventually(t, func() bool {
		resp, err := http.Get(healthz)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("serve did not stop")
	}
}
