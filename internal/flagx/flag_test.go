package flagx

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-k", "-i", "60"},
			allowedFlags: []string{"-k", "-i"},
			want:         []string{"-k", "-i", "60"},
		},
		{
			name:         "equals value starting with dashes",
			args:         []string{"--config=--weird.json"},
			allowedFlags: []string{"--config"},
			want:         []string{"--config=--weird.json"},
		},
		{
			name:         "plain token with equals is not a flag",
			args:         []string{"a=b", "-a", ":8080"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a", ":8080"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv(ConfigEnv, "")

	assert.Equal(t, "a.json", ConfigPath([]string{"-a", ":1", "-c", "a.json"}))
	assert.Equal(t, "b.json", ConfigPath([]string{"-config=b.json"}))
	assert.Equal(t, "", ConfigPath([]string{"-a", ":1"}))
}

func TestConfigPath_EnvFallback(t *testing.T) {
	p := filepath.Join(t.TempDir(), "env.json")
	t.Setenv(ConfigEnv, p)

	assert.Equal(t, p, ConfigPath(nil))
	assert.Equal(t, "flag.json", ConfigPath([]string{"-c", "flag.json"}), "flag wins over env")
}

func TestDurationVar(t *testing.T) {
	d := 5 * time.Minute

	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	DurationVar(fs, &d, "t", time.Minute, "minutes")

	f := fs.Lookup("t")
	require.NotNil(t, f)
	assert.Equal(t, "5", f.DefValue)

	require.NoError(t, fs.Parse([]string{"-t", "15"}))
	assert.Equal(t, 15*time.Minute, d)

	require.Error(t, fs.Parse([]string{"-t", "soon"}))
}

func TestDurationVar_Untouched(t *testing.T) {
	d := 90 * time.Second
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	DurationVar(fs, &d, "k", time.Second, "seconds")

	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, 90*time.Second, d)
}
