package command

const backupSigintQuestion = "Stopping a backup can leave partial archives in the cache directories. Are you sure you want to cancel? [yes/no]"
const backupStdinErrorMessage = "Couldn't read from Stdin, if you still want to stop the backup send SIGTERM."
const backupCleanupAdvisedNotice = "It is recommended that you check the cache directories for partial archives and re-run `labops backup run` once the targets look healthy."

const rotateSigintQuestion = "Stopping a rotation can leave a backup present in two tiers at once. Are you sure you want to cancel? [yes/no]"
const rotateStdinErrorMessage = "Couldn't read from Stdin, if you still want to stop the rotation send SIGTERM."
const rotateCleanupAdvisedNotice = "It is recommended that you re-run `labops backup rotate`; a repeated pass skips anything already promoted."
