package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
)

// Read reads a job from the given file. Environment variables in the file are expanded.
func Read(filePath string) (*Job, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a job from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader) (*Job, error) {
	job := Job{ConfigFilePath: originalPath}
	if err := json.NewDecoder(r).Decode(&job); err != nil {
		return nil, errors.Wrapf(err, "failed to decode job from json")
	}
	if err := job.Validate(); err != nil {
		return nil, errors.Wrapf(err, "failed to validate job")
	}
	return &job, nil
}

// Write stores the job as indented JSON.
func Write(filePath string, job *Job) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, append(data, '\n'), 0o600)
}
