package driver

const (
	SaveEntityNodeQuery = `
		MERGE (n:Entity {node_id: $node_id})
		SET n.node_type = $node_type,
			n.label = $label,
			n.confidence = $confidence,
			n.resolved = $resolved
		RETURN n.node_id AS node_id
	`

	SaveTrackNodeQuery = `
		MERGE (n:Track {node_id: $node_id})
		SET n.clip_id = $clip_id,
			n.camera_id = $camera_id,
			n.label = $label
		RETURN n.node_id AS node_id
	`

	SaveCameraNodeQuery = `
		MERGE (n:Camera {node_id: $node_id})
		SET n.camera_id = $camera_id
		RETURN n.node_id AS node_id
	`

	SaveExitsEdgeQuery = `
		MATCH (source:Entity {node_id: $source_id})
		MATCH (target:Entity {node_id: $target_id})
		MERGE (source)-[e:EXITS {edge_id: $edge_id}]->(target)
		SET e.t_start = $t_start,
			e.t_end = $t_end,
			e.camera_id = $camera_id,
			e.confidence = $confidence,
			e.evidence_count = $evidence_count
		RETURN e.edge_id AS edge_id
	`

	SaveMovesToEdgeQuery = `
		MATCH (source:Entity {node_id: $source_id})
		MATCH (target:Camera {node_id: $target_id})
		MERGE (source)-[e:MOVES_TO {edge_id: $edge_id}]->(target)
		SET e.t_start = $t_start,
			e.t_end = $t_end,
			e.camera_id = $camera_id,
			e.confidence = $confidence,
			e.evidence_count = $evidence_count
		RETURN e.edge_id AS edge_id
	`
)
