package basket

import "context"

// RemoveAfter removes lineItemID once transition is closed. The caller plays
// whatever exit transition it wants and closes the channel when it finishes.
// If ctx ends first the basket is left as it was and ctx.Err() is returned.
func (b *Basket) RemoveAfter(ctx context.Context, lineItemID string, transition <-chan struct{}) (bool, error) {
	select {
	case <-transition:
		return b.Remove(lineItemID), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
