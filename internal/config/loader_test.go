package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/taskbounty/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.BaseURL, convey.ShouldEqual, "http://127.0.0.1:8000")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.DefaultSeed, convey.ShouldEqual, 42)
				convey.So(cfg.DefaultRounds, convey.ShouldEqual, 2)
				convey.So(cfg.LoadDemoOnStart, convey.ShouldBeTrue)
				convey.So(cfg.DiscardStale, convey.ShouldBeFalse)
				convey.So(cfg.RequestTimeout(), convey.ShouldEqual, time.Duration(0))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TASKBOUNTY_ADDR", ":8080")
			_ = os.Setenv("TASKBOUNTY_BASE_URL", "http://bounty.internal:8000")
			_ = os.Setenv("TASKBOUNTY_REQUEST_TIMEOUT_MS", "1500")
			_ = os.Setenv("TASKBOUNTY_DISCARD_STALE", "true")
			_ = os.Setenv("TASKBOUNTY_LOAD_DEMO_ON_START", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.BaseURL, convey.ShouldEqual, "http://bounty.internal:8000")
				convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 1500*time.Millisecond)
				convey.So(cfg.DiscardStale, convey.ShouldBeTrue)
				convey.So(cfg.LoadDemoOnStart, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# dashboard
addr: ":9090"   # inline comment
base_url: "http://10.0.0.5:8000"
default_seed: 7
default_rounds: 4
`
			tmpFile := createTempFile("taskbounty-config-*.yaml", yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TASKBOUNTY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.BaseURL, convey.ShouldEqual, "http://10.0.0.5:8000")
				convey.So(cfg.DefaultSeed, convey.ShouldEqual, 7)
				convey.So(cfg.DefaultRounds, convey.ShouldEqual, 4)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempFile("taskbounty-config-*.yaml", "addr: \":9090\"\ndefault_seed: 7\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TASKBOUNTY_CONFIG", tmpFile)
			_ = os.Setenv("TASKBOUNTY_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DefaultSeed, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When loading config with an env file", func() {
			envFile := createTempFile("taskbounty-*.env", "TASKBOUNTY_BASE_URL=http://from-dotenv:8000\nTASKBOUNTY_DEFAULT_ROUNDS=3\n")
			defer func() { _ = os.Remove(envFile) }()

			_ = os.Setenv("TASKBOUNTY_ENV_FILE", envFile)
			_ = os.Setenv("TASKBOUNTY_DEFAULT_ROUNDS", "5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then dotenv values fill unset variables only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "http://from-dotenv:8000")
				convey.So(cfg.DefaultRounds, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When the env file does not exist", func() {
			_ = os.Setenv("TASKBOUNTY_ENV_FILE", "/non/existent/.env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempFile("taskbounty-config-*.yaml", `invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TASKBOUNTY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TASKBOUNTY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("TASKBOUNTY_DEFAULT_SEED", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		ctx := context.Background()

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("TASKBOUNTY_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When base_url is relative", func() {
			_ = os.Setenv("TASKBOUNTY_BASE_URL", "/only/a/path")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "absolute URL")
			})
		})

		convey.Convey("When the request timeout is negative", func() {
			cfg := config.New()
			cfg.RequestTimeoutMS = -1

			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When defaults are validated", func() {
			convey.So(config.New().Validate(), convey.ShouldBeNil)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"TASKBOUNTY_CONFIG",
		"TASKBOUNTY_ENV_FILE",
		"TASKBOUNTY_ADDR",
		"TASKBOUNTY_BASE_URL",
		"TASKBOUNTY_LOG_LEVEL",
		"TASKBOUNTY_REQUEST_TIMEOUT_MS",
		"TASKBOUNTY_DEFAULT_SEED",
		"TASKBOUNTY_DEFAULT_ROUNDS",
		"TASKBOUNTY_LOAD_DEMO_ON_START",
		"TASKBOUNTY_DISCARD_STALE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempFile(pattern, content string) string {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
