package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/service"
	"golang.org/x/sync/errgroup"
)

// Services are the application services the views call into
type Services struct {
	Details *service.DetailsService
	List    *service.ListService
	Trailer *service.TrailerService
}

// Command factories for async operations

// LoadDetailsCmd loads a detail page and the item's list membership together
func LoadDetailsCmd(svcs Services, kind domain.MediaKind, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var (
			details *domain.Details
			inList  bool
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			d, err := svcs.Details.Details(gctx, kind, id)
			details = d
			return err
		})
		if svcs.List != nil {
			g.Go(func() error {
				in, err := svcs.List.Contains(gctx, kind, id)
				if errors.Is(err, domain.ErrNotLoggedIn) {
					return nil
				}
				inList = in
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return ErrMsg{Err: err, Context: "loading details"}
		}
		return DetailsLoadedMsg{Details: *details, InList: inList}
	}
}

// LoadRowCmd loads a catalog row with media resolved for every item
func LoadRowCmd(svc *service.DetailsService, row domain.Row) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second) // rows resolve every item
		defer cancel()

		items, err := svc.Row(ctx, row)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading " + row.Name}
		}
		return RowLoadedMsg{Row: row, Items: items}
	}
}

// SearchCmd runs a catalog search and delivers the hits as row
func SearchCmd(svc *service.DetailsService, row domain.Row, query string, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		items, err := svc.Search(ctx, query, page)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching " + query}
		}
		return RowLoadedMsg{Row: row, Items: items}
	}
}

// PlayTrailerCmd launches the item's trailer in the configured player
func PlayTrailerCmd(svc *service.TrailerService, kind domain.MediaKind, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		trailer, err := svc.Play(ctx, kind, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "playing trailer"}
		}
		return TrailerLaunchedMsg{Trailer: *trailer}
	}
}

// ToggleListCmd adds the item to the list, or removes it when inList is set
func ToggleListCmd(svc *service.ListService, item domain.CatalogItem, inList bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if inList {
			if err := svc.Remove(ctx, item.Kind, item.ID); err != nil {
				return ErrMsg{Err: err, Context: "removing from list"}
			}
			return ListToggledMsg{Kind: item.Kind, ID: item.ID, InList: false}
		}

		if _, err := svc.Add(ctx, item); err != nil {
			return ErrMsg{Err: err, Context: "adding to list"}
		}
		return ListToggledMsg{Kind: item.Kind, ID: item.ID, InList: true}
	}
}
