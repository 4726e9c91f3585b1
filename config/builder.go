package config

import (
	"github.com/jpalmerr/todoapi"
)

// BuildOptions converts parsed configuration into [todoapi.Option] values.
func BuildOptions(cfg *Config) []todoapi.Option {
	opts := []todoapi.Option{
		todoapi.WithPort(cfg.Port),
	}

	if cfg.Title != "" {
		opts = append(opts, todoapi.WithTitle(cfg.Title))
	}

	if len(cfg.AllowedOrigins) > 0 {
		opts = append(opts, todoapi.WithAllowedOrigins(cfg.AllowedOrigins...))
	}

	if cfg.RateLimit != nil {
		opts = append(opts, todoapi.WithRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	// nil means the key was absent; keep the built-in sample todos
	if cfg.Seed != nil {
		opts = append(opts, todoapi.WithSeed(buildSeed(cfg.Seed)...))
	}

	if cfg.Profile != nil {
		opts = append(opts, todoapi.WithProfile(buildProfile(cfg.Profile)))
	}

	return opts
}

func buildSeed(seed []SeedConfig) []todoapi.SeedTodo {
	out := make([]todoapi.SeedTodo, len(seed))
	for i, s := range seed {
		out[i] = todoapi.SeedTodo{Text: s.Text, Done: s.Done}
	}
	return out
}

// buildProfile overlays the configured values on [todoapi.DefaultProfile];
// fields left empty keep their default.
func buildProfile(pc *ProfileConfig) todoapi.Profile {
	p := todoapi.DefaultProfile()

	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&p.User.Name, pc.User.Name)
	overlay(&p.Rating, pc.Rating)
	overlay(&p.Mood, pc.Mood)
	overlay(&p.MoodEmoji, pc.MoodEmoji)
	overlay(&p.FavoriteSong, pc.FavoriteSong)
	overlay(&p.FavoriteArtist, pc.FavoriteArtist)
	overlay(&p.FavoriteShow, pc.FavoriteShow)
	overlay(&p.MemeURL, pc.MemeURL)
	overlay(&p.MemeCaption, pc.MemeCaption)

	return p
}
