package store

// Table names, also used to label write metrics.
const (
	DatasetsTable = "DATASETS"
	MembersTable  = "MEMBERS"
)

const createDatasets = `create table if not exists DATASETS (
	NAME       TEXT NOT NULL,

	VOLUME     TEXT,
	DEVICE     TEXT,
	CATALOG    TEXT,

	CREATED    DATE,
	EXPIRES    DATE,
	REFERRED   DATE,

	TRACKS     INT,
	CYLINDERS  INT,
	PERCENT    INT,
	EXTENTS    INT,

	DSORG      TEXT,
	RECFM      TEXT,
	LRECL      INT,
	BLKSIZE    INT,

	FILENAME   TEXT,
	DOWNLOADED DATE,
	CREATED2   DATE,
	REFERRED2  DATE,
	ENCODING   TEXT,
	STRUCTURE  TEXT,

	PRIMARY KEY (NAME)
) WITHOUT ROWID`

const createMembers = `create table if not exists MEMBERS (
	DATASET    TEXT NOT NULL,
	NAME       TEXT NOT NULL,

	SIZE       INT,
	INIT       INT,
	MOD        INT,
	VV         INT,
	MM         INT,
	ID         TEXT,
	CREATED    DATE,
	CHANGED    DATE,

	FILENAME   TEXT,
	DOWNLOADED DATE,
	CREATED2   DATE,
	CHANGED2   DATE,
	ENCODING   TEXT,
	STRUCTURE  TEXT,

	FOREIGN KEY (DATASET) REFERENCES DATASETS (NAME),
	PRIMARY KEY (DATASET, NAME)
) WITHOUT ROWID`

// Members reference datasets, so they are dropped first.
var dropStatements = []string{
	"drop table if exists MEMBERS",
	"drop table if exists DATASETS",
}

const datasetColumns = `NAME, VOLUME, DEVICE, CATALOG, CREATED, EXPIRES, REFERRED,
	TRACKS, CYLINDERS, PERCENT, EXTENTS, DSORG, RECFM, LRECL, BLKSIZE,
	FILENAME, DOWNLOADED, CREATED2, REFERRED2, ENCODING, STRUCTURE`

const memberColumns = `DATASET, NAME, SIZE, INIT, MOD, VV, MM, ID, CREATED, CHANGED,
	FILENAME, DOWNLOADED, CREATED2, CHANGED2, ENCODING, STRUCTURE`

const (
	selectDatasets = "select " + datasetColumns + " from DATASETS"
	selectMembers  = "select " + memberColumns + " from MEMBERS"

	insertDataset = "insert into DATASETS (" + datasetColumns + `)
	values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	updateDataset = `update DATASETS set VOLUME=?, DEVICE=?, CATALOG=?, CREATED=?, EXPIRES=?,
	REFERRED=?, TRACKS=?, CYLINDERS=?, PERCENT=?, EXTENTS=?, DSORG=?, RECFM=?, LRECL=?,
	BLKSIZE=?, FILENAME=?, DOWNLOADED=?, CREATED2=?, REFERRED2=?, ENCODING=?, STRUCTURE=?
	where NAME=?`

	insertMember = "insert into MEMBERS (" + memberColumns + `)
	values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	updateMember = `update MEMBERS set SIZE=?, INIT=?, MOD=?, VV=?, MM=?, ID=?, CREATED=?,
	CHANGED=?, FILENAME=?, DOWNLOADED=?, CREATED2=?, CHANGED2=?, ENCODING=?, STRUCTURE=?
	where DATASET=? and NAME=?`
)
