package crawl

// State is a phase of a crawl session
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateAnalyzing
	StateSelecting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateAnalyzing:
		return "analyzing"
	case StateSelecting:
		return "selecting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// session is the mutable traversal state of one Run.
// visited only ever grows and a URL enters it before its capture starts.
type session struct {
	state     State
	cursor    string
	visited   map[string]struct{}
	order     []string
	processed int
	// candidates left over from the most recent link extraction
	pending []string
}

func newSession(seed string) *session {
	return &session{
		state:   StateIdle,
		cursor:  seed,
		visited: make(map[string]struct{}),
	}
}

func (s *session) isVisited(u string) bool {
	_, ok := s.visited[u]
	return ok
}

func (s *session) visit(u string) {
	if s.isVisited(u) {
		return
	}
	s.visited[u] = struct{}{}
	s.order = append(s.order, u)
}

// canContinue is the loop guard checked before every iteration
func (s *session) canContinue(budget int) bool {
	return s.processed < budget && s.cursor != "" && !s.isVisited(s.cursor)
}

// selectFrom replaces the pending candidates with links and advances the cursor
func (s *session) selectFrom(links []string) {
	s.pending = links
	s.advance()
}

// advance moves the cursor to the first unvisited pending candidate, or
// clears it when none is left
func (s *session) advance() {
	s.cursor = ""
	for i, link := range s.pending {
		if !s.isVisited(link) {
			s.cursor = link
			s.pending = s.pending[i+1:]
			return
		}
	}
	s.pending = nil
}
