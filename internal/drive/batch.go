package drive

import "context"

// ApplyEach runs op against every motor in ids, isolating failures: one
// motor's error never stops the rest of the batch. The collected errors
// are returned in motor order. The disable and configure phases both go
// through here.
func ApplyEach(ctx context.Context, ids []int, op string, fn func(ctx context.Context, id int) error) []*MotorError {
	failures := make([]*MotorError, 0)
	for _, id := range ids {
		if err := fn(ctx, id); err != nil {
			failures = append(failures, &MotorError{MotorID: id, Op: op, Err: err})
		}
	}
	return failures
}
