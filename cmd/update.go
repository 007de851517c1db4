// Package cmd holds helpers shared by the neurix binaries.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-version"
)

// AppVersion is overridden at build time with -ldflags "-X github.com/nulzo/neurix/cmd.AppVersion=v1.2.3".
var AppVersion = "v0.0.0"

type GitHubRelease struct {
	TagName string `json:"tag_name"`
}

// Update describes the outcome of a release check.
type Update struct {
	Current  string
	Latest   string
	Outdated bool
}

// CheckForUpdates compares AppVersion with the latest release published at
// url. Any network or parse failure is returned so the caller can ignore it.
func CheckForUpdates(ctx context.Context, url string) (*Update, error) {
	client := http.Client{
		Timeout: 2 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release check returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}

	current, err := version.NewVersion(AppVersion)
	if err != nil {
		return nil, err
	}

	latest, err := version.NewVersion(release.TagName)
	if err != nil {
		return nil, err
	}

	return &Update{
		Current:  AppVersion,
		Latest:   release.TagName,
		Outdated: current.LessThan(latest),
	}, nil
}
