// Package store holds the in-memory mirror of the remote activities.
//
// A Store keeps a registry of activities keyed by id, the currently selected
// activity and the flags a UI needs for feedback:
//   - LoadingInitial is true while LoadAll is waiting on the API
//   - Submitting is true while Create, Update or Delete is waiting on the API
//   - EditMode is true while the create/edit form should be shown
//   - Target names the UI element whose delete is pending
//
// Operations never return errors. A failed API call is logged, recorded in the
// journal when one is attached, and the flag it set is cleared again.
//
// Operations may run concurrently. The store does not serialize them, so
// LoadingInitial and Submitting can both be true, and the first call of a kind
// to finish clears its flag even if another is still in flight.
//
// Every change bumps State.Version. Subscribers receive snapshots in Version
// order; a snapshot overtaken by a newer one before delivery is skipped, so
// the last state a subscriber sees is always the store's current state.
//
// # Example
//
//	s, err := store.New(apiclient.New(baseURL), store.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	unsubscribe := s.Subscribe(func(state store.State) {
//	    render(state.Activities)
//	})
//	defer unsubscribe()
//
//	s.LoadAll(ctx)
//	s.OpenCreateForm()
//	s.Create(ctx, activity.Activity{ID: activity.NewID(), Title: "Pub quiz"})
package store
