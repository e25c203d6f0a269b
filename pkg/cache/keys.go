package cache

// Keyer derives cache keys from run inputs.
type Keyer interface {
	// NetworkKey identifies a built network by the hash of its input
	// roads and the parameters that shape it.
	NetworkKey(roadsHash string, opts NetworkKeyOpts) string

	// PlanKey identifies a plan by the hash of its network and of the
	// zones it was decided against.
	PlanKey(networkHash, zonesHash string) string
}

// NetworkKeyOpts are the planner parameters a built network depends on.
type NetworkKeyOpts struct {
	JunctionMergeThreshold float64 `json:"junction_merge_threshold"`
	NearbyFactor           float64 `json:"nearby_factor"`
	Linkage                string  `json:"linkage"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// NetworkKey returns "network:<hash>".
func (DefaultKeyer) NetworkKey(roadsHash string, opts NetworkKeyOpts) string {
	return hashKey("network", roadsHash, opts)
}

// PlanKey returns "plan:<hash>".
func (DefaultKeyer) PlanKey(networkHash, zonesHash string) string {
	return hashKey("plan", networkHash, zonesHash)
}
