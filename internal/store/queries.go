package store

const (
	SaveReportQuery = `
		MERGE (s:Subject {id: $subject})
		CREATE (r:Report {
			uuid: $uuid,
			subject: $subject,
			consistency_score: $consistency_score,
			passed: $passed,
			strategy: $strategy,
			created_at: $created_at,
			payload: $payload
		})
		CREATE (s)-[:VERIFIED_BY]->(r)
		RETURN r.uuid AS uuid
	`

	GetReportQuery = `
		MATCH (r:Report {uuid: $uuid})
		RETURN r.payload AS payload
	`

	ListReportsQuery = `
		MATCH (s:Subject {id: $subject})-[:VERIFIED_BY]->(r:Report)
		RETURN r.payload AS payload
		ORDER BY r.created_at DESC
		LIMIT $limit
	`
)
