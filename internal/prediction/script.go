package prediction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"inventory/internal/models"
)

// ScriptConfig locates the prediction script and its interpreter.
type ScriptConfig struct {
	Interpreter string // e.g. "python3"
	ScriptPath  string
	// Timeout bounds a run when the caller's context has no deadline.
	Timeout time.Duration
}

const (
	defaultScriptTimeout = 5 * time.Second
	// scriptWaitDelay is how long Run waits for output pipes after the script is killed.
	scriptWaitDelay = 500 * time.Millisecond
)

// ScriptPredictor runs the demand model as a child process, once per product.
//
// The script is invoked as
//
//	<interpreter> <script> <productID> <stock> <price> <skuID> <category>
//
// and must print the prediction as the last line on stdout.
type ScriptPredictor struct {
	cfg    ScriptConfig
	logger *zap.Logger
}

// NewScriptPredictor creates a ScriptPredictor. It fails if the script does not exist.
func NewScriptPredictor(cfg ScriptConfig, logger *zap.Logger) (*ScriptPredictor, error) {
	if cfg.Interpreter == "" {
		return nil, errors.New("prediction interpreter is required")
	}
	abs, err := filepath.Abs(cfg.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("resolve prediction script: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("prediction script not found: %w", err)
	}
	cfg.ScriptPath = abs
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultScriptTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptPredictor{cfg: cfg, logger: logger}, nil
}

func (p *ScriptPredictor) PredictDemand(ctx context.Context, in Input) (float64, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.cfg.Interpreter, p.cfg.ScriptPath,
		strconv.FormatUint(uint64(in.ProductID), 10),
		strconv.Itoa(stockOrDefault(in)),
		strconv.FormatFloat(priceOrDefault(in), 'f', -1, 64),
		in.SkuID,
		in.Category,
	)
	cmd.Dir = filepath.Dir(p.cfg.ScriptPath)
	cmd.WaitDelay = scriptWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("%w: product %d: %v", models.ErrPredictionUnavailable, in.ProductID, ctxErr)
		}
		p.logger.Debug("Prediction script failed",
			zap.Uint("product_id", in.ProductID),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(err))
		return 0, fmt.Errorf("%w: product %d: script: %v", models.ErrPredictionUnavailable, in.ProductID, err)
	}

	v, err := ParseOutput(stdout.String())
	if err != nil {
		return 0, fmt.Errorf("%w: product %d: %v", models.ErrPredictionUnavailable, in.ProductID, err)
	}
	return v, nil
}

// ParseOutput extracts the prediction from script output: the last non-empty
// line that is not an ERROR line, clamped at zero.
func ParseOutput(out string) (float64, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "ERROR") {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return 0, fmt.Errorf("unparsable prediction %q", line)
		}
		if v < 0 {
			v = 0
		}
		return v, nil
	}
	return 0, errors.New("empty prediction output")
}
