package config

// DomainConfig holds all configurable graph rules and traversal bounds
type DomainConfig struct {
	// Traversal bounds. Descendant checks recurse without a visited-set
	// and rely entirely on this depth cap; the reachable-set walk keeps a
	// visited-set and uses its own, slightly larger cap.
	DescendantDepthLimit int
	ReachableDepthLimit  int

	// State snapshot settings
	BaseStateName string

	// Node defaults
	DefaultNodeName string
	DefaultNodeKind string
	CloneNameSuffix string

	// Registry settings
	DedupKeepLast bool

	// Size limits
	MaxNodesPerProject int
	MaxEdgesPerNode    int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		DescendantDepthLimit: 4,
		ReachableDepthLimit:  5,

		BaseStateName: "base",

		DefaultNodeName: "Unnamed",
		DefaultNodeKind: "concept",
		CloneNameSuffix: " (Clone)",

		DedupKeepLast: true,

		MaxNodesPerProject: 10000,
		MaxEdgesPerNode:    0, // unlimited
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More restrictive limits for production
	config.MaxNodesPerProject = 5000
	config.MaxEdgesPerNode = 500

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxNodesPerProject = 100000

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.DescendantDepthLimit < 1 || c.ReachableDepthLimit < 1 {
		return errInvalidDepth
	}
	if c.BaseStateName == "" {
		return errEmptyBaseState
	}
	return nil
}
