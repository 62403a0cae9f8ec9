package places

import domain "github.com/donaldgifford/rental-gateway/pkg/types"

type detailsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Result       detailsResult `json:"result"`
}

type detailsResult struct {
	Rating           *float64    `json:"rating"`
	UserRatingsTotal *int        `json:"user_ratings_total"`
	Reviews          []rawReview `json:"reviews"`
}

type rawReview struct {
	AuthorName              string   `json:"author_name"`
	AuthorURL               string   `json:"author_url"`
	ProfilePhotoURL         string   `json:"profile_photo_url"`
	Rating                  *float64 `json:"rating"`
	Text                    string   `json:"text"`
	Time                    *int64   `json:"time"`
	RelativeTimeDescription string   `json:"relative_time_description"`
}

// toSummary maps zero ratings and counts to nil, as absent values.
func (r detailsResult) toSummary() *domain.ReviewSummary {
	s := &domain.ReviewSummary{
		Rating:     positiveFloat(r.Rating),
		TotalCount: r.UserRatingsTotal,
		Reviews:    make([]domain.Review, 0, len(r.Reviews)),
	}
	if s.TotalCount != nil && *s.TotalCount == 0 {
		s.TotalCount = nil
	}
	for _, rv := range r.Reviews {
		s.Reviews = append(s.Reviews, domain.Review{
			AuthorName:              rv.AuthorName,
			AuthorURL:               rv.AuthorURL,
			ProfilePhotoURL:         rv.ProfilePhotoURL,
			Rating:                  positiveFloat(rv.Rating),
			Text:                    rv.Text,
			Time:                    rv.Time,
			RelativeTimeDescription: rv.RelativeTimeDescription,
		})
	}
	return s
}

func positiveFloat(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}
