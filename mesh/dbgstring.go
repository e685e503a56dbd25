package mesh

import (
	"fmt"

	"github.com/logrusorgru/aurora"
	"github.com/osuushi/adaptmesh/dbg"
)

// DbgName gives the connectivity a stable readable name for debug output,
// colored cyan when the domain is periodic on any axis, green otherwise.
func (c *Connectivity) DbgName() string {
	name := dbg.Name(c)
	if c.Domain.PeriodicX || c.Domain.PeriodicY {
		return aurora.Cyan(name).String()
	}
	return aurora.Green(name).String()
}

func (c *Connectivity) String() string {
	return fmt.Sprintf("Mesh %s <V: %d, E: %d, T: %d>",
		c.DbgName(), c.NVertex(), c.NEdge(), c.NTriangle())
}
