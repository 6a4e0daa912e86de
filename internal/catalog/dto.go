package catalog

// ItemResponse is a movie, TV show or mixed trending entry. Movies use
// title/release_date, TV uses name/first_air_date.
type ItemResponse struct {
	ID             int64   `json:"id"`
	MediaType      string  `json:"media_type,omitempty"` // Only on trending/all and multi search
	Title          string  `json:"title,omitempty"`
	Name           string  `json:"name,omitempty"`
	Overview       string  `json:"overview"`
	PosterPath     string  `json:"poster_path"`
	BackdropPath   string  `json:"backdrop_path"`
	VoteAverage    float64 `json:"vote_average"`
	VoteCount      int     `json:"vote_count"`
	ReleaseDate    string  `json:"release_date,omitempty"`
	FirstAirDate   string  `json:"first_air_date,omitempty"`
	Genres         []Genre `json:"genres,omitempty"`
	Runtime        int     `json:"runtime,omitempty"`
	EpisodeRunTime []int   `json:"episode_run_time,omitempty"`
}

// Genre is a catalog genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PageResponse is a paginated list of items
type PageResponse struct {
	Page         int            `json:"page"`
	Results      []ItemResponse `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// VideosResponse is the payload of {kind}/{id}/videos
type VideosResponse struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`
}

// Video is one video record
type Video struct {
	ISO6391     *string `json:"iso_639_1"`
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Site        string  `json:"site"`
	Type        string  `json:"type"`
	Official    bool    `json:"official"`
	PublishedAt string  `json:"published_at,omitempty"` // RFC 3339
	VoteCount   int     `json:"vote_count,omitempty"`
}

// ImagesResponse is the payload of {kind}/{id}/images
type ImagesResponse struct {
	ID        int64   `json:"id"`
	Logos     []Image `json:"logos"`
	Posters   []Image `json:"posters,omitempty"`
	Backdrops []Image `json:"backdrops,omitempty"`
}

// Image is one image record
type Image struct {
	AspectRatio float64 `json:"aspect_ratio"`
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ISO6391     *string `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}
