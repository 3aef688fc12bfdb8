package server

import "errors"

// ErrRecommenderRequired is returned when a recommender is not provided.
var ErrRecommenderRequired = errors.New("recommender required")
