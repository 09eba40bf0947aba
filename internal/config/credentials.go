package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Key names inside the shared credentials file. These are fixed by the
// platform's other tooling; this loader must read the same file an
// existing installation already has.
const (
	credentialKeyID     = "veracode_api_key_id"
	credentialKeySecret = "veracode_api_key_secret"
)

// fillFromSharedCredentials loads key material from the shared
// ~/.veracode/credentials file for any credential field still empty after
// the environment and config file were applied. A missing file is fine;
// a file that exists but lacks the requested profile is an error, since
// the user asked for that profile.
func (c *Config) fillFromSharedCredentials(path string) error {
	if c.APIKeyID != "" && c.APIKeySecret != "" {
		return nil
	}

	id, secret, err := loadSharedCredentials(path, c.CredentialsProfile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if c.APIKeyID == "" {
		c.APIKeyID = id
	}
	if c.APIKeySecret == "" {
		c.APIKeySecret = secret
	}
	return nil
}

// loadSharedCredentials parses the INI-style credentials file and returns
// the key pair of the named profile:
//
//	[default]
//	veracode_api_key_id = <id>
//	veracode_api_key_secret = <secret>
//
// The format is two keys under a bracketed profile header; comments start
// with '#' or ';'.
func loadSharedCredentials(path, profile string) (id, secret string, err error) {
	if profile == "" {
		profile = "default"
	}

	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	var (
		section      string
		profileFound bool
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			if section == profile {
				profileFound = true
			}
			continue
		}

		if section != profile {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case credentialKeyID:
			id = strings.TrimSpace(value)
		case credentialKeySecret:
			secret = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}

	if !profileFound {
		return "", "", fmt.Errorf("profile %q not found in %s", profile, path)
	}
	return id, secret, nil
}
