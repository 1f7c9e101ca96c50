package mcpserver

// RecordFormatURI identifies the record format resource.
const RecordFormatURI = "starsys://record-format"

// RecordFormatContract describes the JSON records returned by the catalog
// tools and the CSV layout accepted by imports.
const RecordFormatContract = `# Star System Record Format

Every tool that returns systems emits JSON records of this shape.

## System

` + "```" + `json
{
  "name": "HD 40307",          // unique, case-sensitive
  "spectral_type": "K2.5V",    // "Unknown" when the archive has none
  "distance_ly": 42.0,         // light-years from Earth; 0 means unknown
  "planet_count": 2,
  "planets": [ ... ]
}
` + "```" + `

## Planet

` + "```" + `json
{
  "name": "HD 40307 b",
  "mass": 4.2,                 // Earth masses
  "radius": 1.7,               // Earth radii
  "orbit_distance": 4.3,       // orbital period in days for archive data
  "classification": "Super-Earth"
}
` + "```" + `

## Classification

Derived from mass (M) and radius (R), first match wins:

1. **Dwarf Planet**: M < 0.1
2. **Terrestrial**: M < 2.0 and R < 1.5
3. **Super-Earth**: M < 10.0
4. **Gas Giant**: everything else

## Filters

- ` + "`max_distance`" + ` keeps systems with a known distance at or below the value.
- ` + "`spectral_types`" + ` matches the first letter of the spectral type (G matches G2V).
- ` + "`has_planets`" + ` / ` + "`min_planets`" + ` filter on the planet count.

## CSV

Imports and exports use the header

    system_name,spectral_type,distance_ly,planet_name,mass,radius,orbit_distance

with one row per planet. A row with an empty planet_name declares a system
without planets.
`
