package membership

// voteBucket is one entry of countVotes: a distinct reconfig set together
// with how many votes projected onto it. reconfigSet holds a slice and so
// cannot itself be a map key; bucketing instead keys on its canonical
// string form and carries the set alongside the count.
type voteBucket struct {
	set   reconfigSet
	count int
}

// countVotes buckets votes by their projected reconfig set and counts how
// many votes land in each bucket.
func countVotes(votes []SignedVote) map[string]*voteBucket {
	counts := make(map[string]*voteBucket)
	for _, v := range votes {
		set := v.reconfigsOnly()
		key := set.key()
		b, ok := counts[key]
		if !ok {
			b = &voteBucket{set: set}
			counts[key] = b
		}
		b.count++
	}
	return counts
}

func maxCount(counts map[string]*voteBucket) int {
	max := 0
	for _, b := range counts {
		if b.count > max {
			max = b.count
		}
	}
	return max
}

// isSuperMajority reports whether more than two thirds of the current
// members (by generation s.Gen) back the same reconfig set.
func (s *State) isSuperMajority(votes []SignedVote) (bool, error) {
	members, err := s.Members(s.Gen)
	if err != nil {
		return false, err
	}
	n := len(members)
	if n == 0 {
		return false, nil
	}

	most := maxCount(countVotes(votes))
	return 3*most > 2*n, nil
}

// isSplitVote reports whether more than two thirds of members have voted,
// yet even crediting every remaining member to the current leading
// reconfig set cannot reach super-majority.
func (s *State) isSplitVote(votes []SignedVote) (bool, error) {
	members, err := s.Members(s.Gen)
	if err != nil {
		return false, err
	}
	n := len(members)
	if n == 0 || len(votes) == 0 {
		return false, nil
	}

	voted := make(map[string]struct{}, len(votes))
	for _, v := range votes {
		voted[string(v.Voter[:])] = struct{}{}
	}

	remaining := 0
	for _, m := range members {
		if _, ok := voted[string(m[:])]; !ok {
			remaining++
		}
	}

	most := maxCount(countVotes(votes))
	predicted := most + remaining

	return 3*len(voted) > 2*n && 3*predicted <= 2*n, nil
}

// isSuperMajorityOverSuperMajorities reports whether more than two thirds
// of members have themselves cast SuperMajority ballots agreeing on the
// same winning reconfig set: the point at which the round closes.
func (s *State) isSuperMajorityOverSuperMajorities(votes []SignedVote) (bool, error) {
	members, err := s.Members(s.Gen)
	if err != nil {
		return false, err
	}
	n := len(members)
	if n == 0 || len(votes) == 0 {
		return false, nil
	}

	winning := resolveVotes(votes)

	count := 0
	for _, v := range votes {
		if !v.IsSuperMajorityBallot() {
			continue
		}
		if v.reconfigsOnly().key() == winning.key() {
			count++
		}
	}

	return 3*count > 2*n, nil
}
