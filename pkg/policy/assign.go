package policy

import (
	"slices"

	"github.com/dyluth/shoal/pkg/pooling"
)

// Assign partitions devices into pools according to the policy.
//
// Excluded serials are dropped first, then non-tablets when TabletOnly is set.
// Pools are returned in a deterministic order and empty pools are omitted:
//   - serial: declaration order; a device listed in several pools joins each of them
//   - computed: ascending bucket order, the default pool first when it is used
//   - per-device: one pool per device, named by serial, in input order
//   - none: a single default pool holding every device
func (p *Policy) Assign(devices []pooling.Device) []Pool {
	eligible := make([]pooling.Device, 0, len(devices))
	for _, d := range devices {
		if p.IsExcluded(d.Serial) {
			continue
		}
		if p.TabletOnly && !d.Tablet {
			continue
		}
		eligible = append(eligible, d)
	}

	switch p.Mode {
	case ModeSerial:
		return assignBySerial(p.SerialPools, eligible)
	case ModeComputed:
		return assignComputed(p.Computed, eligible)
	case ModePerDevice:
		pools := make([]Pool, 0, len(eligible))
		for _, d := range eligible {
			pools = append(pools, Pool{Name: d.Serial, Serials: []string{d.Serial}})
		}
		return pools
	default:
		if len(eligible) == 0 {
			return []Pool{}
		}
		return []Pool{{Name: pooling.DefaultPoolName, Serials: serialsOf(eligible)}}
	}
}

func assignBySerial(pools *pooling.SerialBasedPools, devices []pooling.Device) []Pool {
	out := make([]Pool, 0, pools.Len())
	for _, name := range pools.Names() {
		declared := pools.Serials(name)

		var members []string
		for _, d := range devices {
			if slices.Contains(declared, d.Serial) {
				members = append(members, d.Serial)
			}
		}
		if len(members) > 0 {
			out = append(out, Pool{Name: name, Serials: members})
		}
	}
	return out
}

func assignComputed(selector *pooling.ComputedPoolsSelector, devices []pooling.Device) []Pool {
	type group struct {
		firstIndex int
		pool       Pool
	}

	var groups []*group
	byName := make(map[string]*group)
	for _, d := range devices {
		bucket := selector.PoolFor(d)
		name := bucket.PoolName()

		// unnamed buckets share the default pool, which sorts first
		index := bucket.Index
		if bucket.IsDefault() {
			index = -1
		}

		g, ok := byName[name]
		if !ok {
			g = &group{firstIndex: index, pool: Pool{Name: name}}
			byName[name] = g
			groups = append(groups, g)
		}
		g.firstIndex = min(g.firstIndex, index)
		g.pool.Serials = append(g.pool.Serials, d.Serial)
	}

	slices.SortStableFunc(groups, func(a, b *group) int {
		return a.firstIndex - b.firstIndex
	})

	out := make([]Pool, len(groups))
	for i, g := range groups {
		out[i] = g.pool
	}
	return out
}

func serialsOf(devices []pooling.Device) []string {
	serials := make([]string, len(devices))
	for i, d := range devices {
		serials[i] = d.Serial
	}
	return serials
}
