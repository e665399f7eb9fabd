package interviewnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Interview-Coach-Agent/agent/contract"
	statex "github.com/tanpawarit/Interview-Coach-Agent/agent/state"
)

func LoadState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", in.SessionID, err)
	}
	if st.Phase == statex.PhaseDone {
		return nil, fmt.Errorf("%w: session %s", contractx.ErrSessionDone, in.SessionID)
	}

	in.Session = st
	return in, nil
}
