// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

const defaultConfigTemplate = `# config.toml - Auto-generated on first run

# Data directory holding the database
# Default: the directory of this file
#dataDir = ""

# Database file
# Default: curator.db in the data directory
#databasePath = "curator.db"

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/curator.log"

# Log rotation
# Maximum log file size in megabytes before rotation
# Default: 50
#logMaxSize = 50

# Number of rotated log files to retain (0 keeps all)
# Default: 3
#logMaxBackups = 3

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "INFO"

# Prometheus metrics
# Default: false
#metricsEnabled = false
#metricsHost = "127.0.0.1"
#metricsPort = 9074
# Comma separated user:password pairs protecting /metrics
#metricsBasicAuthUsers = ""

[releases]
# Tie-break on size between otherwise equal releases
# Options: "none", "smaller", "larger"
#sizePreference = "none"

# Words that raise a release's rank, once per word
#preferredWords = ["proper", "remux"]

# Rank freeleech and internal releases higher
#preferIndexerFlags = false

# 0 disables the checks below
#maximumSizeMb = 0
#minimumSeeders = 0
#retentionDays = 0
#minimumAge = "0s"

#requiredTerms = []
#ignoredTerms = []

# Optional boolean expression over a release, e.g. 'seeders > 5 && not (title contains "CAM")'
#filter = ""

# How long a grab blocks equal releases
#recentGrabWindow = "12h"

#workers = 4

[import]
# Options: "auto", "move", "copy"
#mode = "auto"
#skipFreeSpaceCheck = false
#minimumFreeSpaceMb = 100
#workingFolders = ["_UNPACK_", "_FAILED_"]
#importExtras = true
#extraExtensions = [".srt", ".ass", ".sub", ".idx", ".nfo", ".cue", ".lrc", ".jpg", ".png"]

[stalled]
#enabled = true
#stalledThresholdMinutes = 30
#inactivityThresholdMinutes = 15
#pollInterval = "1m"

[watch]
# Drop folders imported automatically once they stop changing
#paths = []
#debounce = "30s"
#scanOnStart = true

# One table per qBittorrent instance
#[[downloadClients]]
#name = "qbittorrent"
#host = "http://localhost:8080"
#username = "admin"
#password = ""
#category = "curator"
`
