package portfolio

import "context"

// Reconcile is the shared optimistic-update flow: apply a local patch so the
// UI answers immediately, then fetch authoritative state and commit it. If
// the fetch fails, rollback undoes the patch; a nil rollback keeps the patch
// in place, which is right when the mutation itself already succeeded
// server-side and only the refresh failed.
func Reconcile[T any](ctx context.Context, patch func(), fetch func(context.Context) (T, error), commit func(T), rollback func()) error {
	if patch != nil {
		patch()
	}
	fresh, err := fetch(ctx)
	if err != nil {
		if rollback != nil {
			rollback()
		}
		return err
	}
	commit(fresh)
	return nil
}
