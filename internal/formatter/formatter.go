// package formatter converts provider track data into the display
// descriptors rendered by the playlist views
package formatter

import (
	"github.com/kapinzzal02/playgen/internal/services"
	"github.com/kapinzzal02/playgen/internal/shared"
)

// TrackView is one rendered track row.
type TrackView struct {
	Name        string
	Album       string
	Artists     string // display names joined with ", "
	Duration    string // "m:ss", seconds zero-padded
	URI         string
	ExternalURL string
}

// PlaylistView is the data context for the playlist listing page.
//
// TrackURIs is the JSON-serialized URI list round-tripped through the save
// form's hidden field.
type PlaylistView struct {
	ArtistName string
	Mood       string
	Tracks     []TrackView
	TrackURIs  string
}

// FormatTrack converts a provider track into its display descriptor.
func FormatTrack(t services.Track) TrackView {
	return TrackView{
		Name:        t.Name,
		Album:       t.Album,
		Artists:     shared.JoinArtists(t.Artists),
		Duration:    shared.FormatTrackDuration(t.DurationMS),
		URI:         t.URI,
		ExternalURL: t.ExternalURL,
	}
}

// FormatTracks converts a provider track listing, preserving order.
func FormatTracks(tracks []services.Track) []TrackView {
	views := make([]TrackView, 0, len(tracks))
	for _, t := range tracks {
		views = append(views, FormatTrack(t))
	}
	return views
}
