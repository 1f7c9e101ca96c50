package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS star_systems (
	name          TEXT PRIMARY KEY CHECK (length(name) > 0),
	spectral_type TEXT,
	distance_ly   REAL
);

CREATE TABLE IF NOT EXISTS planets (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL CHECK (length(name) > 0),
	mass           REAL,
	radius         REAL,
	orbit_distance REAL,
	system_name    TEXT NOT NULL REFERENCES star_systems(name) ON DELETE CASCADE,
	UNIQUE (name, system_name)
);

CREATE INDEX IF NOT EXISTS idx_star_systems_distance ON star_systems(distance_ly);
CREATE INDEX IF NOT EXISTS idx_star_systems_spectral_type ON star_systems(spectral_type);
CREATE INDEX IF NOT EXISTS idx_planets_system_name ON planets(system_name);
`
