package config

import "fmt"

// Merge combines two configs where overlay takes precedence over base.
// Scalar fields in overlay win when non-zero; packs and tuning merge
// field by field; a non-empty overlay address list replaces the base one.
// Versions must agree if both declare one.
func Merge(base, overlay *Config) (*Config, error) {
	if base == nil {
		return overlay, nil
	}
	if overlay == nil {
		return base, nil
	}

	result := *base

	if err := mergeVersion(base.Version, overlay.Version, &result.Version); err != nil {
		return nil, err
	}

	pick(&result.ContentDir, overlay.ContentDir)
	pick(&result.StateFile, overlay.StateFile)
	pick(&result.CacheDir, overlay.CacheDir)
	pick(&result.APIBaseURL, overlay.APIBaseURL)
	pick(&result.WebBaseURL, overlay.WebBaseURL)
	pick(&result.UserAgent, overlay.UserAgent)
	pick(&result.RequestTimeout, overlay.RequestTimeout)

	result.Botpack = mergePack(base.Botpack, overlay.Botpack)
	result.Mappack = mergePack(base.Mappack, overlay.Mappack)

	t := &result.Tuning
	pick(&t.MaxPatchGap, overlay.Tuning.MaxPatchGap)
	pick(&t.SizeScale, overlay.Tuning.SizeScale)
	pick(&t.CompressionRatio, overlay.Tuning.CompressionRatio)
	pick(&t.FallbackSize, overlay.Tuning.FallbackSize)
	pick(&t.ProgressInterval, overlay.Tuning.ProgressInterval)
	pick(&t.PrefetchWindow, overlay.Tuning.PrefetchWindow)
	pick(&t.FullDownloadOnPatchFailure, overlay.Tuning.FullDownloadOnPatchFailure)

	oc := &result.OnlineCheck
	if overlay.OnlineCheck.Enabled != nil {
		enabled := *overlay.OnlineCheck.Enabled
		oc.Enabled = &enabled
	}
	if len(overlay.OnlineCheck.Addrs) > 0 {
		oc.Addrs = append([]string(nil), overlay.OnlineCheck.Addrs...)
	}
	pick(&oc.Timeout, overlay.OnlineCheck.Timeout)

	return &result, nil
}

func mergePack(base, overlay Pack) Pack {
	pick(&base.Owner, overlay.Owner)
	pick(&base.Name, overlay.Name)
	pick(&base.Branch, overlay.Branch)
	pick(&base.Folder, overlay.Folder)
	return base
}

func pick[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

func mergeVersion(base, overlay int, out *int) error {
	switch {
	case base == 0 && overlay == 0:
		*out = 0 // neither declares; validation will catch this
	case base == 0:
		*out = overlay
	case overlay == 0:
		*out = base
	case base == overlay:
		*out = base
	default:
		return fmt.Errorf("config version mismatch: defaults declare version %d, the file declares version %d", base, overlay)
	}
	return nil
}
