package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/marquee/internal/domain"
)

// launcher abstracts opening a URL in an external player (consumer-defined interface)
type launcher interface {
	Launch(url string) error
}

// ErrNoTrailer is returned when an item has no playable trailer
var ErrNoTrailer = errors.New("no trailer available")

// TrailerService opens an item's resolved trailer in an external player
type TrailerService struct {
	details  *DetailsService
	launcher launcher
	logger   *slog.Logger
}

// NewTrailerService creates a new trailer service
func NewTrailerService(details *DetailsService, launcher launcher, logger *slog.Logger) *TrailerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrailerService{
		details:  details,
		launcher: launcher,
		logger:   logger,
	}
}

// Play resolves the item's trailer through the details cache and launches it
func (s *TrailerService) Play(ctx context.Context, kind domain.MediaKind, id int64) (*domain.VideoCandidate, error) {
	d, err := s.details.Details(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	trailer := d.Media.Trailer
	if trailer == nil || trailer.WatchURL() == "" {
		return nil, ErrNoTrailer
	}

	s.logger.Info("launching trailer", "title", d.Item.Title, "site", trailer.Site, "key", trailer.Key)
	if err := s.launcher.Launch(trailer.WatchURL()); err != nil {
		s.logger.Error("failed to launch trailer", "error", err, "title", d.Item.Title)
		return nil, fmt.Errorf("failed to launch player: %w", err)
	}
	return trailer, nil
}
