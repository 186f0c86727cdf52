package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconEdit    = "" // nf-fa-edit
	IconNew     = "" // nf-fa-plus
	IconLock    = "" // nf-fa-lock
	IconDialog  = "" // nf-fa-window_maximize
	IconWarning = "" // nf-fa-warning
	IconDirty   = "●"

	IconNotifyInfo    = "\uf05a" // nf-fa-info_circle
	IconNotifyWarning = "\uf071" // nf-fa-warning
	IconNotifyError   = "\uf057" // nf-fa-times_circle
	IconCheck         = "\uf00c" // nf-fa-check
)
