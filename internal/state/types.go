package state

// State is the persisted local state file.
type State struct {
	Version int            `yaml:"version"`
	Botpack BotFolderState `yaml:"bot_folder_settings"`
}

// BotFolderState holds the installed revision and the folders the host
// application scans for bots.
type BotFolderState struct {
	// Incr is the revision tag in its "incr-<N>" form. Empty means no
	// content pack is installed.
	Incr    string                    `yaml:"incr,omitempty"`
	Folders map[string]FolderSettings `yaml:"folders,omitempty"`
	Files   map[string]FileSettings   `yaml:"files,omitempty"`
}

// FolderSettings controls whether a folder's bots are shown.
type FolderSettings struct {
	Visible bool `yaml:"visible"`
}

// FileSettings controls whether an individually added bot file is shown.
type FileSettings struct {
	Visible bool `yaml:"visible"`
}

// New returns an empty version 1 state.
func New() *State {
	return &State{Version: 1}
}
