package inbox

import (
	"context"
	"sync"

	"github.com/gatherly-app/gatherly/internal/domain"
)

// probeOutcome records one authorization probe. A probe succeeds when page
// 1 of the conversation's history can be read; the payload is discarded.
// Any failure, including a timeout, counts as a denial for this cycle
// only; the conversation is re-probed on the next cycle.
type probeOutcome struct {
	conversation domain.Conversation
	authorized   bool
	err          error
}

// runProbes fans out one authorization probe per candidate and waits for
// every probe to settle before returning. This is a join barrier, not a
// race: the partition into authorized and denied is complete for the whole
// candidate set.
func (c *Coordinator) runProbes(ctx context.Context, candidates []domain.Conversation) (authorized []domain.Conversation, denied []probeOutcome) {
	outcomes := make([]probeOutcome, len(candidates))

	var wg sync.WaitGroup
	wg.Add(len(candidates))
	for i, conv := range candidates {
		go func(i int, conv domain.Conversation) {
			defer wg.Done()
			outcomes[i] = c.probe(ctx, conv)
		}(i, conv)
	}
	wg.Wait()

	for _, outcome := range outcomes {
		if outcome.authorized {
			authorized = append(authorized, outcome.conversation)
		} else {
			denied = append(denied, outcome)
		}
	}
	return authorized, denied
}

func (c *Coordinator) probe(ctx context.Context, conv domain.Conversation) probeOutcome {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	// No retries; a single failed read excludes the conversation for this
	// cycle. No distinction is made between a denial and a transport
	// error here.
	_, err := c.client.ListMessages(ctx, conv.ID, 1)
	return probeOutcome{
		conversation: conv,
		authorized:   err == nil,
		err:          err,
	}
}
