package simnet

// topo.go checks the peer topology of a scenario. The network itself connects every host
// with every other, but a flow only makes sense between hosts that can reach each other
// over peer links. We convert the hosts and their peer lists into the data structures of
// the gonum graph package and let it find the connected components

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// peerGraph is the gonum representation of the hosts of a scenario and their peer links
type peerGraph struct {
	g        *simple.UndirectedGraph
	idByName map[string]int64
	nameByID map[int64]string
}

// buildPeerGraph returns the graph with one node per host and one edge per peer link
func buildPeerGraph(sd *ScenarioDesc) *peerGraph {
	pg := &peerGraph{g: simple.NewUndirectedGraph(),
		idByName: make(map[string]int64), nameByID: make(map[int64]string)}

	for idx, hd := range sd.Hosts {
		id := int64(idx)
		pg.idByName[hd.Name] = id
		pg.nameByID[id] = hd.Name
		pg.g.AddNode(simple.Node(id))
	}

	for _, hd := range sd.Hosts {
		for _, peer := range hd.Peers {
			peerID, present := pg.idByName[peer]
			// self loops are not allowed by simple graphs and say nothing about reachability
			if !present || peer == hd.Name {
				continue
			}
			pg.g.SetEdge(simple.Edge{F: simple.Node(pg.idByName[hd.Name]), T: simple.Node(peerID)})
		}
	}
	return pg
}

// partitions returns the host names of each connected component, each sorted, largest component first
func (pg *peerGraph) partitions() [][]string {
	rtn := [][]string{}
	for _, cc := range topo.ConnectedComponents(pg.g) {
		rtn = append(rtn, pg.names(cc))
	}
	sort.SliceStable(rtn, func(i, j int) bool {
		if len(rtn[i]) != len(rtn[j]) {
			return len(rtn[i]) > len(rtn[j])
		}
		return rtn[i][0] < rtn[j][0]
	})
	return rtn
}

// names extracts the host names from a list of graph nodes
func (pg *peerGraph) names(nodes []graph.Node) []string {
	rtn := make([]string, 0, len(nodes))
	for _, node := range nodes {
		rtn = append(rtn, pg.nameByID[node.ID()])
	}
	sort.Strings(rtn)
	return rtn
}

// checkFlowConnectivity returns an error naming every flow whose endpoints
// lie in different partitions of the peer graph. A scenario without any peer
// links describes a fully connected network and always passes
func checkFlowConnectivity(sd *ScenarioDesc, pg *peerGraph) error {
	if pg.g.Edges().Len() == 0 {
		return nil
	}
	parts := pg.partitions()
	partOf := func(name string) int {
		return slices.IndexFunc(parts, func(part []string) bool { return slices.Contains(part, name) })
	}

	missed := []string{}
	for _, fd := range sd.Flows {
		if partOf(fd.Src) != partOf(fd.Dst) {
			missed = append(missed, fmt.Sprintf("%s (%s -> %s)", fd.Name, fd.Src, fd.Dst))
		}
	}
	if len(missed) == 0 {
		return nil
	}
	return fmt.Errorf("flows between unconnected hosts: %s", strings.Join(missed, ", "))
}
