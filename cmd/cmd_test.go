package cmd

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/sungit/sungit/internal/git"
	"github.com/sungit/sungit/internal/lock"
	"github.com/sungit/sungit/internal/workflow"
)

func TestVersion(t *testing.T) {
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "unknown", BuildTime)

	assert.NotNil(t, versionCmd)
	assert.Equal(t, "version", versionCmd.Use)
}

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "sungit [utterance...]", rootCmd.Use)
	assert.Equal(t, "sungit - Smart Git Workflow", rootCmd.Short)
	assert.Contains(t, rootCmd.Long, "pull with")
	assert.True(t, rootCmd.SilenceErrors)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"config", "init", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestInitConfig(t *testing.T) {
	viper.Reset()

	cfgFile = ""
	assert.NotPanics(t, func() {
		initConfig()
	})
}

func TestHandleErrors(t *testing.T) {
	t.Run("returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, handleErrors(nil))
	})

	t.Run("attaches hints to actionable sentinels", func(t *testing.T) {
		for _, sentinel := range []error{
			workflow.ErrNoChanges,
			workflow.ErrDivergedAgain,
			git.ErrNotRepository,
			git.ErrToolUnavailable,
			lock.ErrBusy,
		} {
			err := handleErrors(sentinel)
			assert.ErrorIs(t, err, sentinel)
			assert.Contains(t, err.Error(), "Hint:")
		}
	})

	t.Run("propagates generic error untouched", func(t *testing.T) {
		expectedErr := errors.New("boom")
		err := handleErrors(expectedErr)
		assert.Same(t, expectedErr, err)
	})
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "<not set>", maskKey(""))
	assert.Equal(t, "********", maskKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskKey("sk-abcdefghijklmnopqrstuvwxyz"))
}
