package adapter

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCommand struct {
	name string
	args []string
}

func fakeLauncher(command string, args []string, installed ...string) (*Launcher, *[]recordedCommand) {
	var calls []recordedCommand
	l := NewLauncher(command, args, NullLogger())
	l.start = func(name string, args ...string) error {
		calls = append(calls, recordedCommand{name: name, args: args})
		return nil
	}
	l.lookPath = func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
	return l, &calls
}

func TestLauncher_ConfiguredCommand(t *testing.T) {
	l, calls := fakeLauncher("feh", []string{"--scale-down"})

	require.NoError(t, l.Open("https://img/a.png"))
	assert.Equal(t, []recordedCommand{{name: "feh", args: []string{"--scale-down", "https://img/a.png"}}}, *calls)
}

func TestLauncher_RejectsNonHTTP(t *testing.T) {
	l, calls := fakeLauncher("", nil)

	assert.Error(t, l.Open("file:///etc/passwd"))
	assert.Empty(t, *calls)
}

func TestLauncher_DetectsViewer(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("candidate viewers are linux-only")
	}
	l, calls := fakeLauncher("", nil, "eog", "feh")

	require.NoError(t, l.Open("https://img/a.png"))
	assert.Equal(t, "feh", (*calls)[0].name)
}

func TestLauncher_FallsBackToSystemDefault(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("system default differs per platform")
	}
	l, calls := fakeLauncher("", nil)

	require.NoError(t, l.Open("https://img/a.png"))
	assert.Equal(t, []recordedCommand{{name: "xdg-open", args: []string{"https://img/a.png"}}}, *calls)
}
