package memory

import (
	"context"
	"fmt"

	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/store"
)

type activityStore struct{ v *view }

var _ store.ActivityLogStore = (*activityStore)(nil)

func (a *activityStore) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return a.v.with(func(st *state) error {
		c := *entry
		st.activity = append(st.activity, c)
		return nil
	})
}
