package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/models"
)

func TestHeuristic(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want float64
	}{
		{"stock and price", Input{CurrentStock: models.IntPtr(10), Price: models.DecimalPtr(50)}, 30},
		{"defaults for missing values", Input{}, 75},
		{"price floor factor", Input{CurrentStock: models.IntPtr(100), Price: models.DecimalPtr(10000)}, 3},
		{"price below one", Input{CurrentStock: models.IntPtr(10), Price: models.DecimalPtr(0)}, 1500},
		{"no stock", Input{CurrentStock: models.IntPtr(0), Price: models.DecimalPtr(20)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Heuristic(tt.in), 1e-9)
		})
	}
}

func TestParseOutput(t *testing.T) {
	v, err := ParseOutput("loading model\n12.5\n\n")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	v, err = ParseOutput("7\nERROR: warning from sklearn\n")
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	v, err = ParseOutput("-4")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = ParseOutput("not a number")
	assert.Error(t, err)

	_, err = ParseOutput("   \n")
	assert.Error(t, err)
}

func TestWithFallback(t *testing.T) {
	failing := PredictorFunc(func(context.Context, Input) (float64, error) {
		return 0, errors.New("boom")
	})
	in := Input{CurrentStock: models.IntPtr(10), Price: models.DecimalPtr(50)}

	v, err := WithFallback(failing, nil).PredictDemand(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, v, 1e-9)

	ok := PredictorFunc(func(context.Context, Input) (float64, error) { return 4, nil })
	v, err = WithFallback(ok, nil).PredictDemand(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = WithFallback(failing, nil).PredictDemand(ctx, in)
	assert.Error(t, err, "a cancelled caller gets the error, not the heuristic")
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "predict.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestScriptPredictor(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}
	in := Input{ProductID: 7, CurrentStock: models.IntPtr(12), Price: models.DecimalPtr(9.5), SkuID: "SKU_0007", Category: "Cables"}

	t.Run("echoes arguments", func(t *testing.T) {
		// $2 is the stock argument.
		p, err := NewScriptPredictor(ScriptConfig{Interpreter: "/bin/sh", ScriptPath: writeScript(t, `echo "debug $1 $4 $5"; echo "$2"`)}, nil)
		require.NoError(t, err)

		v, err := p.PredictDemand(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, 12.0, v)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		p, err := NewScriptPredictor(ScriptConfig{Interpreter: "/bin/sh", ScriptPath: writeScript(t, `echo 5; exit 3`)}, nil)
		require.NoError(t, err)

		_, err = p.PredictDemand(context.Background(), in)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrPredictionUnavailable)
	})

	t.Run("garbage output", func(t *testing.T) {
		p, err := NewScriptPredictor(ScriptConfig{Interpreter: "/bin/sh", ScriptPath: writeScript(t, `echo nope`)}, nil)
		require.NoError(t, err)

		_, err = p.PredictDemand(context.Background(), in)
		assert.ErrorIs(t, err, models.ErrPredictionUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		p, err := NewScriptPredictor(ScriptConfig{Interpreter: "/bin/sh", ScriptPath: writeScript(t, `exec sleep 5`)}, nil)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		start := time.Now()
		_, err = p.PredictDemand(ctx, in)
		assert.ErrorIs(t, err, models.ErrPredictionUnavailable)
		assert.Less(t, time.Since(start), 3*time.Second)
	})

	t.Run("configured timeout without caller deadline", func(t *testing.T) {
		p, err := NewScriptPredictor(ScriptConfig{
			Interpreter: "/bin/sh",
			ScriptPath:  writeScript(t, `sleep 5 & wait`),
			Timeout:     100 * time.Millisecond,
		}, nil)
		require.NoError(t, err)

		start := time.Now()
		_, err = p.PredictDemand(context.Background(), in)
		assert.ErrorIs(t, err, models.ErrPredictionUnavailable)
		assert.Less(t, time.Since(start), 3*time.Second)
	})

	t.Run("missing script", func(t *testing.T) {
		_, err := NewScriptPredictor(ScriptConfig{Interpreter: "/bin/sh", ScriptPath: filepath.Join(t.TempDir(), "absent.py")}, nil)
		assert.Error(t, err)
	})
}

func TestHTTPPredictor(t *testing.T) {
	var got predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions":[42.5]}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL+"/", time.Second, nil)
	v, err := p.PredictDemand(context.Background(), Input{ProductID: 3, CurrentStock: models.IntPtr(8), SkuID: "SKU_0003"})
	require.NoError(t, err)
	assert.Equal(t, 42.5, v)
	assert.EqualValues(t, 8, got.Features["current_stock"])
	assert.EqualValues(t, DefaultPrice, got.Features["price"])
	assert.Equal(t, "SKU_0003", got.Features["sku_id"])
}

func TestHTTPPredictor_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Model not loaded"}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, nil)
	_, err := p.PredictDemand(context.Background(), Input{ProductID: 1})
	assert.ErrorIs(t, err, models.ErrPredictionUnavailable)

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[]}`))
	}))
	defer empty.Close()

	_, err = NewHTTPPredictor(empty.URL, time.Second, nil).PredictDemand(context.Background(), Input{ProductID: 1})
	assert.ErrorIs(t, err, models.ErrPredictionUnavailable)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	_, err = p.PredictDemand(ctx, Input{ProductID: 1})
	assert.ErrorIs(t, err, models.ErrPredictionUnavailable)
}
