package cmd

import (
	"bytes"
	"testing"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelfUpdateCmd(t *testing.T) {
	cmd := newSelfUpdateCmd()

	assert.Equal(t, "self-update", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("check"))
	assert.NotNil(t, cmd.Flags().Lookup("prerelease"))
}

func TestUpdaterConfig(t *testing.T) {
	cfg := updaterConfig(selfUpdateOptions{prerelease: true})

	assert.True(t, cfg.Prerelease)
	require.IsType(t, &selfupdate.ChecksumValidator{}, cfg.Validator)
	assert.Equal(t, "checksums.txt", cfg.Validator.(*selfupdate.ChecksumValidator).UniqueFilename)

	assert.False(t, updaterConfig(selfUpdateOptions{}).Prerelease)
}

func TestRunSelfUpdate_RefusesDevelopmentVersions(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	for _, version := range []string{"dev", ""} {
		rootCmd.Version = version

		cmd := newSelfUpdateCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{"--check"})

		err := cmd.Execute()
		require.Error(t, err, "version %q", version)
		assert.Contains(t, err.Error(), "cannot self-update a development version")
	}
}

func TestSelfUpdateCommandHelp(t *testing.T) {
	cmd := newSelfUpdateCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Checks for the latest release")
}
