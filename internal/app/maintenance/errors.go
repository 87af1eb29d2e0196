package maintenance

import "errors"

var ErrInvalidPruneAge = errors.New("prune age must be zero or greater")
