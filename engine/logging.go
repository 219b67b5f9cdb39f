package engine

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bibin-skaria/olb/internal/errors"
	"github.com/bibin-skaria/olb/internal/types"
)

// StructuredLogger emits machine-readable build events alongside the plain
// progress output. JSON-formatted so CI log aggregation can index fields.
type StructuredLogger struct {
	logger  *logrus.Logger
	buildID string
}

func NewStructuredLogger(buildID string) *StructuredLogger {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logger.SetOutput(os.Stderr)

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if logLevel, err := logrus.ParseLevel(level); err == nil {
			logger.SetLevel(logLevel)
		}
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	return &StructuredLogger{
		logger:  logger,
		buildID: buildID,
	}
}

func (s *StructuredLogger) withContext(ctx context.Context) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"component": "olb",
		"build_id":  s.buildID,
	})
}

func (s *StructuredLogger) LogBuildStart(ctx context.Context, image, platform, manifestPath string, packages int) {
	s.withContext(ctx).WithFields(logrus.Fields{
		"event":    "build_start",
		"image":    image,
		"platform": platform,
		"manifest": manifestPath,
		"packages": packages,
	}).Info("Starting layer build")
}

func (s *StructuredLogger) LogStepComplete(ctx context.Context, result *types.StepResult) {
	s.withContext(ctx).WithFields(logrus.Fields{
		"event":    "step_complete",
		"step":     result.Step,
		"duration": result.Duration.String(),
		"detail":   result.Detail,
	}).Info("Step completed")
}

func (s *StructuredLogger) LogStepFailed(ctx context.Context, result *types.StepResult, err *errors.BuildError) {
	s.withContext(ctx).WithFields(logrus.Fields{
		"event":    "step_failed",
		"step":     result.Step,
		"duration": result.Duration.String(),
		"category": err.Category,
		"severity": err.Severity,
	}).Error(err.Message)
}

func (s *StructuredLogger) LogBuildComplete(ctx context.Context, result *types.BuildResult) {
	entry := s.withContext(ctx).WithFields(logrus.Fields{
		"event":    "build_complete",
		"success":  result.Success,
		"duration": result.Duration,
		"packages": result.Packages,
	})

	if result.Success {
		entry.WithFields(logrus.Fields{
			"output_path": result.OutputPath,
			"output_size": result.OutputSize,
		}).Info("Layer build completed")
	} else {
		entry.WithField("failed_step", result.FailedStep).Error("Layer build failed")
	}
}
