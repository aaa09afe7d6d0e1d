package dto

// ListActivitiesRequest filters the activity listing.
type ListActivitiesRequest struct {
	Kinds   []string `query:"kind" validate:"dive,oneof=ride run walk hike ski other"`
	Commute *bool    `query:"commute"`
	Page    int      `query:"page" validate:"gte=0"`
	Limit   int      `query:"limit" validate:"gte=0,lte=500"`
}

// SyncRequest triggers a Strava sync from the API.
type SyncRequest struct {
	// Full forces re-listing from the beginning instead of the newest
	// stored activity.
	Full bool `json:"full"`
}
