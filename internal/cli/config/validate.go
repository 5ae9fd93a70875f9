package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/leapstack-labs/leapgen/internal/emit/fastapi"
)

// Validate checks the configuration. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Input == "" {
		errs = append(errs, errors.New("input is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}

	if len(c.Backends) == 0 {
		errs = append(errs, errors.New("backends must name at least one backend"))
	}
	for _, b := range c.Backends {
		if !emit.IsRegistered(b) {
			errs = append(errs, fmt.Errorf("unknown backend %q (available: %s)", b, strings.Join(emit.Names(), ", ")))
		}
	}

	if c.FastAPILayout != "" && !slices.Contains(fastapi.Layouts(), c.FastAPILayout) {
		errs = append(errs, fmt.Errorf("unknown fastapi_layout %q (expected %s)", c.FastAPILayout, strings.Join(fastapi.Layouts(), " or ")))
	}

	if err := validateBaseURL(c.BaseURL); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: must be an absolute http or https URL", raw)
	}
	return nil
}
