package debugger

// engage decides whether a halt point actually enters the read loop. It is evaluated once per
// halt point and may consume step and next counts.
func (s *Session) engage(stop Stop) bool {
	st := &s.state

	if st.Quitting {
		return false
	}

	traced := stop.Target != nil && stop.Target.Trace().Stops(stop.Reason)

	// Counts above one skip this halt point, unless a breakpoint says otherwise.
	if st.Stepping > 1 || st.Nexting > 1 {
		if st.Stepping > 0 {
			st.Stepping--
		}
		if st.Nexting > 0 {
			st.Nexting--
		}
		return traced
	}

	if !s.cfg.StopOnError &&
		st.Stepping == 0 && st.Nexting == 0 &&
		!traced &&
		stop.Code != ErrCodeTerminated {
		return false
	}

	return true
}

// clearTemporary honors a one-shot breakpoint exactly once.
func (s *Session) clearTemporary(stop Stop) {
	t := stop.Target
	if t == nil || t.Trace()&TraceTemp == 0 {
		return
	}

	switch stop.Reason {
	case ReasonAfterCmd, ReasonBeforePrereq, ReasonAfterPrereq:
		t.SetTrace(TraceNone)
		s.forgetBreakpoints(t)
	}
}

// Candidate reports whether the host should offer a halt point to Enter at all. Stepping stops
// everywhere, next only at or above the depth it was issued at, breakpoints for the reasons their
// flags name and errors always qualify.
func (s *Session) Candidate(reason Reason, t Target, depth int) bool {
	st := &s.state
	if st.Quitting {
		return false
	}

	switch {
	case reason == ReasonError, reason == ReasonFatal, reason == ReasonManual:
		return true
	case t != nil && t.Trace().Stops(reason):
		return true
	case st.Stepping > 0:
		return true
	case st.Nexting > 0 && depth <= st.NextDepth:
		return true
	}
	return false
}

// Request is an explicit request from the build to stop, for example from a `$(debugger)` call in
// a recipe. It always stops unless the session is quitting, pending step and next counts are
// dropped.
func (s *Session) Request(t Target) Signal {
	s.state.Stepping = 1
	s.state.Nexting = 0
	return s.Enter(Stop{Target: t, Reason: ReasonManual})
}
