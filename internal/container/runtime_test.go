// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExec answers LookPath and RunSilent from fixed sets and hands piped
// runs to convert.
type fakeExec struct {
	onPath  map[string]bool
	succeed map[string]bool // "bin arg..." -> RunSilent succeeds
	convert func(bin string, args []string, in io.Reader, out io.Writer) error
	stderr  string
	calls   []string
}

func (f *fakeExec) LookPath(file string) (string, error) {
	if f.onPath[file] {
		return "/usr/local/bin/" + file, nil
	}
	return "", errors.New(file + ": executable file not found in $PATH")
}

func (f *fakeExec) RunSilent(name string, args ...string) error {
	cmd := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, cmd)
	if f.succeed[cmd] {
		return nil
	}
	return errors.New("exit status 125")
}

func (f *fakeExec) RunPiped(_ context.Context, name string, args []string, in io.Reader, out, errOut io.Writer) error {
	if f.stderr != "" {
		_, _ = io.WriteString(errOut, f.stderr)
	}
	if f.convert == nil {
		return nil
	}
	return f.convert(name, args, in, out)
}

func operational(bins ...string) *fakeExec {
	f := &fakeExec{onPath: map[string]bool{}, succeed: map[string]bool{}}
	for _, b := range bins {
		f.onPath[b] = true
		f.succeed[b+" info"] = true
	}
	return f
}

func TestSelectRuntime(t *testing.T) {
	brokenDocker := operational(binPodman)
	brokenDocker.onPath[binDocker] = true

	tests := []struct {
		name    string
		exec    *fakeExec
		choose  string
		want    string
		wantErr string
	}{
		{"detect prefers docker", operational(binDocker, binPodman), "", "docker", ""},
		{"detect falls back to podman", operational(binPodman), "", "podman", ""},
		{"detect skips docker whose info fails", brokenDocker, "", "podman", ""},
		{"detect finds nothing", operational(), "", "", "no container runtime available"},
		{"explicit podman", operational(binDocker, binPodman), "podman", "podman", ""},
		{"explicit name is case-insensitive", operational(binDocker), " Docker ", "docker", ""},
		{"explicit runtime down", operational(binDocker), "podman", "", "not found or not operational"},
		{"unknown runtime", operational(binDocker), "containerd", "", "unknown container runtime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := selectRuntime(tt.exec, tt.choose)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	f := operational(binDocker, binPodman)
	f.succeed["docker image inspect "+"markitdown:latest"] = true
	f.succeed["podman image exists "+"markitdown:latest"] = true

	assert.NoError(t, newDockerRuntime(f).ImageExists("markitdown:latest"))
	assert.NoError(t, newPodmanRuntime(f).ImageExists("markitdown:latest"))

	err := newDockerRuntime(f).ImageExists("markitdown:v2")
	assert.ErrorContains(t, err, "image markitdown:v2 not found in docker")
	assert.Contains(t, f.calls, "docker image inspect markitdown:v2")
}

func TestRunPipesDocument(t *testing.T) {
	var gotBin, gotArgs string
	f := &fakeExec{convert: func(bin string, args []string, in io.Reader, out io.Writer) error {
		gotBin, gotArgs = bin, strings.Join(args, " ")
		data, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, "# "+strings.ToUpper(string(data)))
		return err
	}}

	var out bytes.Buffer
	err := newPodmanRuntime(f).Run(context.Background(), "markitdown:latest", strings.NewReader("report"), &out)
	require.NoError(t, err)
	assert.Equal(t, "podman", gotBin)
	assert.Equal(t, "run --rm -i --network none markitdown:latest", gotArgs)
	assert.Equal(t, "# REPORT", out.String())
}

func TestRunFailureCarriesStderr(t *testing.T) {
	fail := func(string, []string, io.Reader, io.Writer) error { return errors.New("exit status 1") }

	err := newDockerRuntime(&fakeExec{convert: fail}).
		Run(context.Background(), "markitdown:latest", strings.NewReader(""), io.Discard)
	assert.EqualError(t, err, "running docker container markitdown:latest: exit status 1")

	err = newDockerRuntime(&fakeExec{convert: fail, stderr: "  FileConversionException\n"}).
		Run(context.Background(), "markitdown:latest", strings.NewReader(""), io.Discard)
	assert.EqualError(t, err, "running docker container markitdown:latest: exit status 1: FileConversionException")
}
